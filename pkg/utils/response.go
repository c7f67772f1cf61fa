package utils

// ResponseData is the standard envelope for every REST response.
type ResponseData struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// PanicIfNeeded panics with the given error so the recovery middleware can
// translate it into a proper HTTP response.
func PanicIfNeeded(err any, message ...string) {
	if err != nil {
		if len(message) > 0 {
			panic(message[0])
		}
		panic(err)
	}
}
