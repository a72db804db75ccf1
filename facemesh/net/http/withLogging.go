package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/LerianStudio/lib-facemesh/facemesh"
	constant "github.com/LerianStudio/lib-facemesh/facemesh/constants"
	"github.com/LerianStudio/lib-facemesh/facemesh/log"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestInfo is a struct design to store http access log data.
type RequestInfo struct {
	Method        string
	URI           string
	Referer       string
	RemoteAddress string
	Status        int
	Date          time.Time
	Duration      time.Duration
	UserAgent     string
	TraceID       string
	Protocol      string
	Size          int
}

// NewRequestInfo creates an instance of RequestInfo.
func NewRequestInfo(c *fiber.Ctx) *RequestInfo {
	referer := "-"
	if r := c.Get(constant.HeaderReferer); r != "" {
		referer = r
	}

	return &RequestInfo{
		TraceID:       c.Get(constant.HeaderID),
		Method:        c.Method(),
		URI:           c.OriginalURL(),
		Referer:       referer,
		UserAgent:     c.Get(constant.HeaderUserAgent),
		RemoteAddress: c.IP(),
		Protocol:      c.Protocol(),
		Date:          time.Now().UTC(),
	}
}

// CLFString produces a log entry format similar to Common Log Format (CLF)
// Ref: https://httpd.apache.org/docs/trunk/logs.html#common
func (r *RequestInfo) CLFString() string {
	return strings.Join([]string{
		r.RemoteAddress,
		"-",
		"-",
		r.Protocol,
		r.Date.Format("[02/Jan/2006:15:04:05 -0700]"),
		`"` + r.Method + " " + r.URI + `"`,
		strconv.Itoa(r.Status),
		strconv.Itoa(r.Size),
		r.Referer,
		r.UserAgent,
	}, " ")
}

// String implements fmt.Stringer.
func (r *RequestInfo) String() string {
	return r.CLFString()
}

// FinishRequestInfo sets status, size and duration from the finished response.
func (r *RequestInfo) FinishRequestInfo(c *fiber.Ctx) {
	r.Duration = time.Now().UTC().Sub(r.Date)
	r.Status = c.Response().StatusCode()
	r.Size = len(c.Response().Body())
}

var unloggedRoutes = []string{"/health", "/version"}

type logMiddleware struct {
	Logger log.Logger
}

// LogMiddlewareOption represents the log middleware function as an implementation.
type LogMiddlewareOption func(l *logMiddleware)

// WithCustomLogger is a functional option for logMiddleware.
func WithCustomLogger(logger log.Logger) LogMiddlewareOption {
	return func(l *logMiddleware) {
		if logger != nil {
			l.Logger = logger
		}
	}
}

func buildOpts(opts ...LogMiddlewareOption) *logMiddleware {
	mid := &logMiddleware{
		Logger: log.NewGoLogger(nil, log.LevelInfo),
	}

	for _, opt := range opts {
		opt(mid)
	}

	return mid
}

// WithHTTPLogging assigns a request id, stores a request-scoped logger in the
// user context and writes one CLF access line per request. Handler errors are
// rendered before the line is written. /health and /version are skipped.
func WithHTTPLogging(opts ...LogMiddlewareOption) fiber.Handler {
	mid := buildOpts(opts...)

	return func(c *fiber.Ctx) error {
		if isRouteExcluded(c.Path(), unloggedRoutes) {
			return c.Next()
		}

		setRequestHeaderID(c)

		info := NewRequestInfo(c)

		logger := mid.Logger.
			With(log.String(constant.HeaderID, info.TraceID)).
			With(log.String("message_prefix", info.TraceID+constant.LoggerDefaultSeparator))

		c.SetUserContext(facemesh.ContextWithLogger(c.UserContext(), logger))

		renderHandlerError(c, c.Next())

		info.FinishRequestInfo(c)

		logger.Log(c.UserContext(), log.LevelInfo, info.CLFString(),
			log.Duration("duration", info.Duration),
		)

		return nil
	}
}

// renderHandlerError runs the app's ErrorHandler on err so the response
// status is final before a middleware reads it.
func renderHandlerError(c *fiber.Ctx, err error) {
	if err == nil {
		return
	}

	if herr := c.App().ErrorHandler(c, err); herr != nil {
		_ = c.SendStatus(fiber.StatusInternalServerError)
	}
}

// setRequestHeaderID reuses the caller's X-Request-Id or generates one, echoing
// it on the response and storing it in the user context.
func setRequestHeaderID(c *fiber.Ctx) {
	headerID := strings.TrimSpace(c.Get(constant.HeaderID))

	if headerID == "" {
		headerID = uuid.New().String()
		c.Request().Header.Set(constant.HeaderID, headerID)
	}

	c.Set(constant.HeaderID, headerID)
	c.SetUserContext(facemesh.ContextWithHeaderID(c.UserContext(), headerID))
}
