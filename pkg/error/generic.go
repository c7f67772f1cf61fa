package error

// GenericError is implemented by all typed errors in this package so the
// recovery middleware can map them to an HTTP response.
type GenericError interface {
	Error() string
	ErrCode() string
	StatusCode() int
}
