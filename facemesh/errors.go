package facemesh

import (
	"errors"
	"fmt"

	constant "github.com/LerianStudio/lib-facemesh/facemesh/constants"
	"github.com/LerianStudio/lib-facemesh/facemesh/digest"
	"github.com/LerianStudio/lib-facemesh/facemesh/mesh"
)

// Response is a business error with a stable code, title and message.
type Response struct {
	EntityType string `json:"entityType,omitempty"`
	Title      string `json:"title,omitempty"`
	Message    string `json:"message,omitempty"`
	Code       string `json:"code,omitempty"`
	Err        error  `json:"-"`
}

func (e Response) Error() string {
	return e.Message
}

// Unwrap returns the underlying domain error.
func (e Response) Unwrap() error {
	return e.Err
}

// ValidateBusinessError maps known domain errors to a Response. Unknown errors are returned as is.
// args, when present, are formatted into the message with fmt.Sprintf.
func ValidateBusinessError(err error, entityType string, args ...any) error {
	if err == nil {
		return nil
	}

	var resp Response

	switch {
	case errors.Is(err, digest.ErrUnknownAlgorithm):
		resp = Response{
			Code:    constant.CodeUnknownDigestAlgorithm,
			Title:   "Unknown Digest Algorithm",
			Message: "The requested digest algorithm is not supported. Use sha256 or blake3.",
		}
	case errors.Is(err, mesh.ErrEmptyDigest), errors.Is(err, mesh.ErrInvalidDigestChar):
		resp = Response{
			Code:    constant.CodeInvalidDigest,
			Title:   "Invalid Digest",
			Message: "The digest used to derive the face is not a valid hexadecimal string.",
		}
	case errors.Is(err, mesh.ErrFaceIndexOutOfRange):
		resp = Response{
			Code:    constant.CodeInvalidMesh,
			Title:   "Invalid Mesh",
			Message: "A face references a vertex that does not exist.",
		}
	case errors.Is(err, mesh.ErrUnsupportedFormat):
		resp = Response{
			Code:    constant.CodeUnsupportedFormat,
			Title:   "Unsupported Export Format",
			Message: "The requested mesh format is not supported. Use json, obj or stl.",
		}
	default:
		return err
	}

	resp.EntityType = entityType
	resp.Err = err

	if len(args) > 0 {
		resp.Message = fmt.Sprintf(resp.Message+" (%v)", fmt.Sprint(args...))
	}

	return resp
}
