package qubic

import "github.com/pkg/errors"

var (
	// ErrInvalidArgument covers coordinates outside [0,3], occupied target
	// cells and malformed encodings.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState is returned for any move on a decided game.
	ErrInvalidState = errors.New("invalid state")
)

func errGameOver(o Outcome) error {
	return errors.Wrapf(ErrInvalidState, "game already decided (%s)", o)
}
