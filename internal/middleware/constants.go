package middleware

// HTTP header constants.
const (
	// HeaderContentType is the Content-Type header name.
	HeaderContentType = "Content-Type"

	// HeaderContentLanguage is the Content-Language header name.
	HeaderContentLanguage = "Content-Language"

	// HeaderAccept is the Accept header name.
	HeaderAccept = "Accept"

	// HeaderAcceptCharset is the Accept-Charset header name.
	HeaderAcceptCharset = "Accept-Charset"

	// HeaderAcceptLanguage is the Accept-Language header name.
	HeaderAcceptLanguage = "Accept-Language"

	// HeaderAcceptEncoding is the Accept-Encoding header name.
	HeaderAcceptEncoding = "Accept-Encoding"

	// HeaderXRequestID is the X-Request-ID header name.
	HeaderXRequestID = "X-Request-ID"
)

// Content type constants.
const (
	// ContentTypeTextPlain is the plain text content type.
	ContentTypeTextPlain = "text/plain"
)

// notAcceptableBody is the body of the terminal 406 fallback response.
const notAcceptableBody = "Not Acceptable"
