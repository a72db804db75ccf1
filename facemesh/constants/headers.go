package constant

const (
	// HeaderUserAgent is the HTTP User-Agent header key.
	HeaderUserAgent = "User-Agent"
	// HeaderID is the request identifier header key.
	HeaderID = "X-Request-Id"
	// HeaderTraceparent is the W3C traceparent header key.
	HeaderTraceparent = "Traceparent"
	// HeaderReferer is the HTTP Referer header key.
	HeaderReferer = "Referer"
	// HeaderContentType is the HTTP Content-Type header key.
	HeaderContentType = "Content-Type"
	// HeaderFaceDigest carries the hex digest a generated face was derived from.
	HeaderFaceDigest = "X-Face-Digest"
	// HeaderDigestAlgorithm names the hash algorithm behind HeaderFaceDigest.
	HeaderDigestAlgorithm = "X-Face-Digest-Algorithm"

	// LoggerDefaultSeparator separates the request id prefix from log messages.
	LoggerDefaultSeparator = " | "
)
