package assent

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kingrea/assent/internal/compare"
)

// Verify compares content with the approved file for id.
//
// A match returns nil and removes any received file left by an earlier
// failing run (see KeepingStaleReceived). A mismatch writes the sanitised
// content to the received file, runs the reporter chain and returns a
// *MismatchError. File system failures return an *IOError. A panicking
// sanitiser or comparer is not recovered.
func (c Configuration) Verify(id TestIdentity, content string) error {
	if id.IsZero() {
		return fmt.Errorf("assent: empty test identity")
	}
	logger := c.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := c.store()

	approvedPath, err := store.ApprovedPath(id)
	if err != nil {
		return err
	}
	receivedPath, err := store.ReceivedPath(id)
	if err != nil {
		return err
	}

	approved, found, err := store.ReadApproved(approvedPath)
	if err != nil {
		return &IOError{Op: "read", Path: approvedPath, Err: err}
	}

	received := c.sanitisers.Apply(content)
	expected := ""
	if found {
		expected = c.sanitisers.Apply(approved)
	}

	if compare.OrDefault(c.comparer).Compare(received, expected) {
		if !c.keepStaleReceived {
			if err := store.RemoveReceived(receivedPath); err != nil {
				return &IOError{Op: "remove", Path: receivedPath, Err: err}
			}
		}
		logger.Debug("approved", zap.String("identity", id.Key()))
		return nil
	}

	if err := store.WriteReceived(receivedPath, received); err != nil {
		return &IOError{Op: "write", Path: receivedPath, Err: err}
	}
	report := c.chain().Report(receivedPath, approvedPath)
	logger.Info("mismatch",
		zap.String("identity", id.Key()),
		zap.String("approved", approvedPath),
		zap.String("received", receivedPath),
		zap.Bool("new_test", !found),
		zap.String("reporter", report.Final.String()))

	return &MismatchError{
		Identity:     id,
		ApprovedPath: approvedPath,
		ReceivedPath: receivedPath,
		Hint:         compare.Hint(received, expected),
		NewTest:      !found,
		Report:       report,
	}
}
