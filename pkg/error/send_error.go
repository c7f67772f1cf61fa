package error

import "net/http"

type SendFailureError string

func (err SendFailureError) Error() string {
	return string(err)
}

func (err SendFailureError) ErrCode() string {
	return "SEND_FAILURE"
}

func (err SendFailureError) StatusCode() int {
	return http.StatusInternalServerError
}

// QuotaExceededError indicates the account already hit its daily send limit.
type QuotaExceededError string

func (err QuotaExceededError) Error() string {
	return string(err)
}

func (err QuotaExceededError) ErrCode() string {
	return "QUOTA_EXCEEDED"
}

func (err QuotaExceededError) StatusCode() int {
	return http.StatusTooManyRequests
}
