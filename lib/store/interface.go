package store

import (
	"errors"
	"fmt"

	"github.com/ValentinKolb/dArr/lib/array"
	"github.com/ValentinKolb/dArr/lib/value"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IStore is the generic interface for interacting with a namespace of named arrays.
// All write operations return only an error (nil on success),
// while read operations return the requested data along with an error (nil on success).
// Returned errors are of type *Error.
//
// Arrays are created by the first Put and read as empty (length 0, undefined values)
// until then.
type IStore interface {
	// Put stores v at index of the named array, creating the array if needed.
	// Index 0xFFFFFFFF is not an array index and is rejected.
	Put(name string, index uint32, v value.Value) (err error)
	// Get returns the value at index, value.Undefined for holes and missing arrays.
	Get(name string, index uint32) (v value.Value, err error)
	// Delete removes the value at index. The length stays unchanged.
	// The boolean return value indicates whether a value was stored.
	Delete(name string, index uint32) (deleted bool, err error)
	// Length returns the length of the named array.
	Length(name string) (length uint32, err error)
	// SetLength assigns the length property. Values that are not exact unsigned
	// 32 bit integers fail with RetCRangeError and leave the array untouched.
	SetLength(name string, length float64) (err error)
	// Sort orders the defined values of the named array.
	Sort(name string, order array.SortOrder) (err error)
	// Indices returns the stored indices, dense indices first.
	Indices(name string) (indices []uint32, err error)
	// Drop removes the named array. The boolean return value indicates whether it existed.
	Drop(name string) (dropped bool, err error)
	// Info returns metadata about the engine holding the named array.
	// It is not guaranteed that all fields are filled in or that the information is up-to-date!
	Info(name string) (info array.ArrayInfo, err error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("StoreError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new store error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// WrapError converts err into a *Error. Range errors of the array package map
// to RetCRangeError, unserializable values to RetCInvalidOperation and
// everything else to RetCInternalError. nil stays nil.
func WrapError(err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	var re *array.RangeError
	if errors.As(err, &re) {
		return NewError(RetCRangeError, re.Msg)
	}
	if errors.Is(err, value.ErrNotSerializable) || errors.Is(err, value.ErrInvalidEncoding) {
		return NewError(RetCInvalidOperation, err.Error())
	}
	return NewError(RetCInternalError, err.Error())
}

// IsCode reports whether err is a *Error with the given code
func IsCode(err error, code RetCode) bool {
	var se *Error
	return errors.As(err, &se) && se.Code == code
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess              RetCode = iota // 0: Command executed successfully.
	RetCInternalError                       // 1: Command failed due to an internal error.
	RetCUnsupportedOperation                // 2: Operation is not supported by the array engine.
	RetCInvalidOperation                    // 3: Invalid operation.
	RetCRangeError                          // 4: Invalid array length.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCUnsupportedOperation:
		return "UnsupportedOperation"
	case RetCInvalidOperation:
		return "InvalidOperation"
	case RetCRangeError:
		return "RangeError"
	default:
		return "Unknown"
	}
}
