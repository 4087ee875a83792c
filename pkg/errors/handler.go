package errors

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// ErrorHandler centralizes error reporting and keeps per-code counts
type ErrorHandler struct {
	mu     sync.Mutex
	counts map[ErrorCode]int
	out    *os.File
}

// NewErrorHandler creates an error handler writing to stderr
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{
		counts: make(map[ErrorCode]int),
		out:    os.Stderr,
	}
}

// Handle records and displays an error
func (h *ErrorHandler) Handle(err error) {
	if err == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = Wrap(err, ErrCodeUnknown, err.Error())
	}

	h.counts[appErr.Code]++
	fmt.Fprintln(h.out, appErr.Error())
}

// Summary returns the number of errors handled per code
func (h *ErrorHandler) Summary() map[ErrorCode]int {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[ErrorCode]int, len(h.counts))
	for k, v := range h.counts {
		out[k] = v
	}
	return out
}

// TransactionHandler runs a function and rolls back on failure or panic
type TransactionHandler struct {
	handler      *ErrorHandler
	rollbackFunc func() error
}

// NewTransactionHandler creates a transaction handler with a rollback function
func (h *ErrorHandler) NewTransactionHandler(rollbackFunc func() error) *TransactionHandler {
	return &TransactionHandler{
		handler:      h,
		rollbackFunc: rollbackFunc,
	}
}

// Execute runs fn, rolling back if it fails or panics
func (th *TransactionHandler) Execute(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if rbErr := th.rollbackFunc(); rbErr != nil {
				th.handler.Handle(Wrap(rbErr, ErrCodeSQLTransaction, "Rollback failed after panic"))
			}
			err = New(ErrCodeInternal, fmt.Sprintf("Panic during transaction: %v", r))
		}
	}()

	if err = fn(); err != nil {
		if rbErr := th.rollbackFunc(); rbErr != nil {
			return Wrap(err, ErrCodeSQLTransaction, "Transaction failed and rollback also failed").
				WithContext("rollback_error", rbErr.Error())
		}
		return err
	}

	return nil
}

var (
	globalHandler     *ErrorHandler
	globalHandlerOnce sync.Once
)

// GetGlobalErrorHandler returns the shared error handler
func GetGlobalErrorHandler() *ErrorHandler {
	globalHandlerOnce.Do(func() {
		globalHandler = NewErrorHandler()
	})
	return globalHandler
}
