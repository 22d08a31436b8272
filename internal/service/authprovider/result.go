package authprovider

import "encoding/json"

// UCResult is the create/update outcome of a binding request.
type UCResult int

const (
	UCNone UCResult = iota
	UCCreated
	UCUpdated
	UCError
)

func (r UCResult) String() string {
	switch r {
	case UCCreated:
		return "Created"
	case UCUpdated:
		return "Updated"
	case UCError:
		return "Error"
	}
	return "None"
}

func (r UCResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// LoginFailureCode classifies an unsuccessful login challenge.
type LoginFailureCode string

const (
	LoginUnregistered       LoginFailureCode = "Unregistered"
	LoginInvalidCredentials LoginFailureCode = "InvalidCredentials"
)

// LoginResult is the outcome of a login challenge. A failed login is a value, not an error.
type LoginResult struct {
	UserID        uint             `json:"user_id,omitempty"`
	Success       bool             `json:"success"`
	FailureCode   LoginFailureCode `json:"failure_code,omitempty"`
	FailureReason string           `json:"failure_reason,omitempty"`
}

func loginSuccess(userID uint) *LoginResult {
	return &LoginResult{UserID: userID, Success: true}
}

func loginFailure(code LoginFailureCode, reason string) *LoginResult {
	return &LoginResult{FailureCode: code, FailureReason: reason}
}

// UCLResult carries the create/update outcome and, when a login policy was requested,
// the nested login result. Err is ErrAlreadyBound or ErrNotBound when OperationResult is UCError.
type UCLResult struct {
	OperationResult UCResult
	Err             error
	UserID          uint
	LoginResult     *LoginResult
}

// OK reports whether the create/update step (if any) succeeded and the login, if requested, passed.
func (r UCLResult) OK() bool {
	if r.OperationResult == UCError {
		return false
	}
	return r.LoginResult == nil || r.LoginResult.Success
}
