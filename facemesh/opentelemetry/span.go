package opentelemetry

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxAttributeDepth            = 8
	maxAttributeCount            = 128
	maxSpanAttributeStringLength = 1024
)

// HandleSpanError marks span as failed and records err.
func HandleSpanError(span trace.Span, message string, err error) {
	if span == nil || err == nil {
		return
	}

	span.SetStatus(codes.Error, message+": "+err.Error())
	span.RecordError(err)
}

// HandleSpanEvent adds an event to span.
func HandleSpanEvent(span trace.Span, eventName string, attributes ...attribute.KeyValue) {
	if span == nil {
		return
	}

	span.AddEvent(eventName, trace.WithAttributes(attributes...))
}

// HandleSpanBusinessErrorEvent records a client-facing error as an event
// without failing the span.
func HandleSpanBusinessErrorEvent(span trace.Span, eventName string, err error) {
	if span == nil || err == nil {
		return
	}

	span.AddEvent(eventName, trace.WithAttributes(attribute.String("error", err.Error())))
}

// SetSpanAttributesFromValue flattens value into dotted attributes under prefix and sets them on span.
func SetSpanAttributesFromValue(span trace.Span, prefix string, value any) error {
	if span == nil {
		return nil
	}

	attrs, err := BuildAttributesFromValue(prefix, value)
	if err != nil {
		return err
	}

	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}

	return nil
}

// BuildAttributesFromValue round-trips value through JSON and flattens the
// result into attributes such as "prefix.vertices.0.1". Depth, count and
// string length are bounded.
func BuildAttributesFromValue(prefix string, value any) ([]attribute.KeyValue, error) {
	if value == nil {
		return nil, nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal span attribute value: %w", err)
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("unmarshal span attribute value: %w", err)
	}

	var attrs []attribute.KeyValue

	flattenAttributes(&attrs, sanitizeUTF8String(prefix), decoded, 0)

	return attrs, nil
}

func flattenAttributes(attrs *[]attribute.KeyValue, key string, value any, depth int) {
	if depth > maxAttributeDepth || len(*attrs) >= maxAttributeCount {
		return
	}

	switch v := value.(type) {
	case map[string]any:
		for k, child := range v {
			flattenAttributes(attrs, joinKey(key, sanitizeUTF8String(k)), child, depth+1)
		}
	case []any:
		for i, child := range v {
			flattenAttributes(attrs, joinKey(key, strconv.Itoa(i)), child, depth+1)
		}
	case string:
		s := sanitizeUTF8String(v)
		if len(s) > maxSpanAttributeStringLength {
			s = s[:maxSpanAttributeStringLength]
		}

		*attrs = append(*attrs, attribute.String(key, s))
	case float64:
		*attrs = append(*attrs, attribute.Float64(key, v))
	case bool:
		*attrs = append(*attrs, attribute.Bool(key, v))
	case nil:
	default:
		*attrs = append(*attrs, attribute.String(key, fmt.Sprintf("%v", v)))
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}

	return prefix + "." + key
}

func sanitizeUTF8String(s string) string {
	if !utf8.ValidString(s) {
		return strings.ToValidUTF8(s, "�")
	}

	return s
}
