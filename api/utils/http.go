// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	pkgerrors "github.com/pkg/errors"

	"github.com/vechain/gemfarm/gem"
	"github.com/vechain/gemfarm/reverts"
)

// CallerHeader carries the identity of the caller.
const CallerHeader = "x-gemfarm-caller"

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	return e.cause.Error()
}

func (e *httpError) Unwrap() error {
	return e.cause
}

func HTTPError(cause error, status int) error {
	return &httpError{
		cause:  cause,
		status: status,
	}
}

func BadRequest(cause error) error {
	return HTTPError(cause, http.StatusBadRequest)
}

func Forbidden(cause error) error {
	return HTTPError(cause, http.StatusForbidden)
}

// StatusOf maps an error to its http status.
func StatusOf(err error) int {
	var he *httpError
	if errors.As(err, &he) {
		return he.status
	}
	code, ok := reverts.CodeOf(err)
	switch {
	case !ok:
		return http.StatusInternalServerError
	case code == reverts.CodeUnauthorized:
		return http.StatusForbidden
	case code == reverts.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// ErrorBody is the json body of failed requests.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type HandlerFunc func(http.ResponseWriter, *http.Request) error

func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		body := ErrorBody{Error: err.Error()}
		if code, ok := reverts.CodeOf(err); ok {
			body.Code = code.String()
		}
		w.Header().Set("Content-Type", JSONContentType)
		w.WriteHeader(StatusOf(err))
		_ = json.NewEncoder(w).Encode(&body)
	}
}

const (
	JSONContentType = "application/json; charset=utf-8"
)

func ParseJSON(r io.Reader, v any) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func WriteJSON(w http.ResponseWriter, obj any) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}

type M map[string]any

// Caller returns the identity carried by the caller header.
func Caller(r *http.Request) (gem.Address, error) {
	value := r.Header.Get(CallerHeader)
	if value == "" {
		return gem.Address{}, Forbidden(pkgerrors.New("missing " + CallerHeader + " header"))
	}
	caller, err := gem.ParseAddress(value)
	if err != nil {
		return gem.Address{}, BadRequest(pkgerrors.WithMessage(err, CallerHeader))
	}
	return caller, nil
}

// ParseAddress parses a path or body address, mapping failures to 400.
func ParseAddress(name, value string) (gem.Address, error) {
	addr, err := gem.ParseAddress(value)
	if err != nil {
		return gem.Address{}, BadRequest(pkgerrors.WithMessage(err, name))
	}
	return addr, nil
}
