package constant

// Business error codes rendered in the "code" field of error responses.
const (
	CodeUnknownDigestAlgorithm = "FMH-0001"
	CodeInvalidDigest          = "FMH-0002"
	CodeInvalidMesh            = "FMH-0003"
	CodeUnsupportedFormat      = "FMH-0004"
)
