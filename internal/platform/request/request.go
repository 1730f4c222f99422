// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away body decoding, bearer token parsing and access to the claims
injected by the authentication middleware, ensuring consistent error handling.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/taibuivan/adminauth/internal/platform/apperr"
	"github.com/taibuivan/adminauth/internal/platform/constants"
	"github.com/taibuivan/adminauth/internal/platform/ctxutil"
	"github.com/taibuivan/adminauth/internal/platform/sec"
	"github.com/taibuivan/adminauth/internal/platform/validate"
)

// ErrBodyTooLarge is returned when a body exceeds [constants.MaxRequestBodyBytes].
var ErrBodyTooLarge = apperr.New("PAYLOAD_TOO_LARGE", "Request body too large", http.StatusRequestEntityTooLarge)

/*
DecodeJSON reads at most [constants.MaxRequestBodyBytes] of the request body
and decodes it into the target structure.

Parameters:
  - writer: http.ResponseWriter (lets the server close oversized connections)
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: ErrBodyTooLarge, validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target interface{}) error {
	request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxRequestBodyBytes)

	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrBodyTooLarge
		}
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
BearerToken extracts the token from an 'Authorization: Bearer <token>' header.

Returns:
  - string: The raw token
  - bool: false if the header is absent or not a bearer credential
*/
func BearerToken(request *http.Request) (string, bool) {
	header := request.Header.Get(constants.HeaderAuthorization)
	if header == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, constants.BearerScheme) {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

/*
Claims extracts the verified session claims from the request context.

Returns nil if the request is not authenticated.
*/
func Claims(request *http.Request) *sec.Claims {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredClaims ensures the request is authenticated and returns the session claims.

Returns:
  - *sec.Claims: The verified claims
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.Claims, error) {

	// Get session claims
	claims := ctxutil.GetAuthUser(request.Context())

	// If the request is anonymous, return an error
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	return claims, nil
}
