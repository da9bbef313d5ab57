package difftool

import "runtime"

// Built-in tool names.
const (
	BeyondCompare = "beyondcompare"
	P4Merge       = "p4merge"
	KDiff3        = "kdiff3"
	Meld          = "meld"
	DiffMerge     = "diffmerge"
	WinMerge      = "winmerge"
	TortoiseMerge = "tortoisemerge"
	VSCode        = "vscode"
	FileMerge     = "filemerge"
)

// Catalog returns the built-in descriptors for goos in default fallback
// order. Unknown platforms get the Linux list.
func Catalog(goos string) []Descriptor {
	switch goos {
	case "windows":
		return windowsCatalog()
	case "darwin":
		return darwinCatalog()
	default:
		return linuxCatalog()
	}
}

// DefaultRegistry returns a registry preloaded with the catalog for the
// running platform.
func DefaultRegistry() *Registry {
	r := &Registry{}
	for _, d := range Catalog(runtime.GOOS) {
		r.MustRegister(d)
	}
	return r
}

func windowsCatalog() []Descriptor {
	return []Descriptor{
		{
			Name: BeyondCompare,
			Paths: []string{
				`${ProgramFiles}\Beyond Compare 4\BCompare.exe`,
				`${ProgramFiles(x86)}\Beyond Compare 4\BCompare.exe`,
				`${ProgramFiles}\Beyond Compare 3\BCompare.exe`,
				`${ProgramFiles(x86)}\Beyond Compare 3\BCompare.exe`,
			},
		},
		{
			Name: P4Merge,
			Paths: []string{
				`${ProgramFiles}\Perforce\p4merge.exe`,
				`${ProgramFiles(x86)}\Perforce\p4merge.exe`,
			},
			Args: SwappedArgs,
		},
		{
			Name: KDiff3,
			Paths: []string{
				`${ProgramFiles}\KDiff3\kdiff3.exe`,
				`${ProgramFiles(x86)}\KDiff3\kdiff3.exe`,
			},
		},
		{
			Name: WinMerge,
			Paths: []string{
				`${ProgramFiles}\WinMerge\WinMergeU.exe`,
				`${ProgramFiles(x86)}\WinMerge\WinMergeU.exe`,
			},
			Args: WithFlags(DefaultArgs, "/u", "/wl"),
		},
		{
			Name: TortoiseMerge,
			Paths: []string{
				`${ProgramFiles}\TortoiseSVN\bin\TortoiseMerge.exe`,
				`${ProgramFiles}\TortoiseGit\bin\TortoiseGitMerge.exe`,
			},
			Args: func(receivedPath, approvedPath string) []string {
				return []string{"/base:" + approvedPath, "/mine:" + receivedPath}
			},
		},
		{
			Name: DiffMerge,
			Paths: []string{
				`${ProgramFiles}\SourceGear\Common\DiffMerge\sgdm.exe`,
				`${ProgramFiles(x86)}\SourceGear\Common\DiffMerge\sgdm.exe`,
			},
			Args: WithFlags(DefaultArgs, "--nosplash"),
		},
		{
			Name: Meld,
			Paths: []string{
				`${ProgramFiles}\Meld\Meld.exe`,
				`${ProgramFiles(x86)}\Meld\Meld.exe`,
			},
		},
		{
			Name: VSCode,
			Paths: []string{
				`${LOCALAPPDATA}\Programs\Microsoft VS Code\Code.exe`,
				`${ProgramFiles}\Microsoft VS Code\Code.exe`,
			},
			Args: WithFlags(DefaultArgs, "--diff"),
		},
	}
}

func darwinCatalog() []Descriptor {
	return []Descriptor{
		{
			Name:  BeyondCompare,
			Paths: []string{"/Applications/Beyond Compare.app/Contents/MacOS/bcomp", "bcomp"},
		},
		{
			Name:  DiffMerge,
			Paths: []string{"/Applications/DiffMerge.app/Contents/MacOS/DiffMerge", "diffmerge"},
			Args:  WithFlags(DefaultArgs, "--nosplash"),
		},
		{
			Name:  KDiff3,
			Paths: []string{"/Applications/kdiff3.app/Contents/MacOS/kdiff3", "kdiff3"},
		},
		{
			Name:  P4Merge,
			Paths: []string{"/Applications/p4merge.app/Contents/MacOS/p4merge", "p4merge"},
			Args:  SwappedArgs,
		},
		{
			Name:  Meld,
			Paths: []string{"/Applications/Meld.app/Contents/MacOS/Meld", "meld"},
		},
		{
			Name:  VSCode,
			Paths: []string{"/Applications/Visual Studio Code.app/Contents/Resources/app/bin/code", "code"},
			Args:  WithFlags(DefaultArgs, "--diff"),
		},
		{
			Name:  FileMerge,
			Paths: []string{"/usr/bin/opendiff", "opendiff"},
		},
	}
}

func linuxCatalog() []Descriptor {
	return []Descriptor{
		{Name: BeyondCompare, Paths: []string{"/usr/bin/bcompare", "bcompare"}},
		{Name: Meld, Paths: []string{"/usr/bin/meld", "meld"}},
		{Name: KDiff3, Paths: []string{"/usr/bin/kdiff3", "kdiff3"}},
		{Name: DiffMerge, Paths: []string{"/usr/bin/diffmerge", "diffmerge"}, Args: WithFlags(DefaultArgs, "--nosplash")},
		{Name: P4Merge, Paths: []string{"/usr/bin/p4merge", "p4merge"}, Args: SwappedArgs},
		{Name: VSCode, Paths: []string{"/usr/bin/code", "/usr/share/code/code", "code"}, Args: WithFlags(DefaultArgs, "--diff")},
	}
}
