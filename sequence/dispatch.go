package sequence

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/linkage/memory"
	"github.com/vkngwrapper/linkage/memutils"
)

// Callback receives each element visited by ForEach
type Callback[T any] interface {
	Visit(element T)
}

// CallbackFunc adapts a plain function or closure to Callback
type CallbackFunc[T any] func(element T)

func (f CallbackFunc[T]) Visit(element T) {
	f(element)
}

func missingCallback[T any](cb Callback[T]) bool {
	if cb == nil {
		return true
	}

	f, isFunc := cb.(CallbackFunc[T])
	return isFunc && f == nil
}

// ForEach calls cb once for each viewed element, in index order. An empty view is a successful
// no-op. A nil callback, or an inconsistent view, fails with memutils.ErrInvalidArgument before
// anything is visited.
func ForEach[T any](view View[T], cb Callback[T]) error {
	err := view.Validate()
	if err != nil {
		return err
	}

	if missingCallback(cb) {
		return errors.Wrap(memutils.ErrInvalidArgument, "for each requires a callback")
	}

	for _, element := range view.Elements() {
		cb.Visit(element)
	}

	return nil
}

// Processor operates on an opaque byte buffer of the given length
type Processor interface {
	Process(data []byte, length int) error
}

// ProcessorFunc adapts a plain function or closure to Processor
type ProcessorFunc func(data []byte, length int) error

func (f ProcessorFunc) Process(data []byte, length int) error {
	return f(data, length)
}

func missingProcessor(p Processor) bool {
	if p == nil {
		return true
	}

	f, isFunc := p.(ProcessorFunc)
	return isFunc && f == nil
}

// ProcessBuffer hands data and its length to p and returns exactly the error p returns. Only the
// presence of data, its length and p are checked: nil or empty data, or a nil processor, fail with
// memutils.ErrInvalidArgument and p is not called.
func ProcessBuffer(data []byte, p Processor) error {
	if len(data) == 0 {
		return errors.Wrap(memutils.ErrInvalidArgument, "attempted to process an empty buffer")
	}

	if missingProcessor(p) {
		return errors.Wrap(memutils.ErrInvalidArgument, "process buffer requires a processor")
	}

	return p.Process(data, len(data))
}

// ProcessManaged is ProcessBuffer over a managed buffer. A nil or released buffer fails with
// memutils.ErrInvalidArgument.
func ProcessManaged(buffer *memory.Buffer, p Processor) error {
	if buffer == nil || buffer.IsReleased() {
		return errors.Wrap(memutils.ErrInvalidArgument, "attempted to process a released buffer")
	}

	return ProcessBuffer(buffer.Bytes(), p)
}

// Int32Processor returns a Processor that decodes its buffer as consecutive little-endian int32
// words and visits each one with cb. A length that is not a whole number of words fails with
// memutils.ErrInvalidArgument before any word is visited.
func Int32Processor(cb Callback[int32]) Processor {
	return ProcessorFunc(func(data []byte, length int) error {
		if missingCallback(cb) {
			return errors.Wrap(memutils.ErrInvalidArgument, "int32 processor requires a callback")
		}

		if length < 0 || length > len(data) {
			return errors.Wrapf(memutils.ErrInvalidArgument, "length %d does not fit a %d byte buffer", length, len(data))
		}

		if length%4 != 0 {
			return errors.Wrapf(memutils.ErrInvalidArgument, "length %d is not a whole number of int32 words", length)
		}

		for offset := 0; offset < length; offset += 4 {
			cb.Visit(int32(binary.LittleEndian.Uint32(data[offset : offset+4])))
		}

		return nil
	})
}
