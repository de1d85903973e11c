package errors

import (
	"fmt"
	"sort"
	"strings"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/protoadapt"
)

// errorDomain identifies this service in google.rpc.ErrorInfo details.
const errorDomain = "charforge"

// ToGRPCError converts an error to a gRPC status error
func ToGRPCError(err error) error {
	if err == nil {
		return nil
	}

	// Already a status error
	if _, ok := status.FromError(err); ok {
		return err
	}

	var customErr *Error
	if !As(err, &customErr) {
		return status.Error(GetCode(err).GRPCCode(), err.Error())
	}

	st := status.New(customErr.Code.GRPCCode(), statusMessage(customErr))

	info := &errdetails.ErrorInfo{
		Reason: customErr.Code.String(),
		Domain: errorDomain,
	}
	details := []protoadapt.MessageV1{info}
	for k, v := range customErr.Meta {
		if k == MetaValidationErrors {
			continue
		}
		if info.Metadata == nil {
			info.Metadata = make(map[string]string)
		}
		info.Metadata[k] = fmt.Sprint(v)
	}

	if fields := ValidationFields(customErr); len(fields) > 0 {
		details = append(details, badRequest(fields))
	}

	if withDetails, detailErr := st.WithDetails(details...); detailErr == nil {
		st = withDetails
	}

	return st.Err()
}

// statusMessage joins the messages of e and every coded error it wraps, so
// the detail of an inner error (which id was missing, which field failed)
// survives outer wrapping. Uncoded causes are left out of the status.
func statusMessage(e *Error) string {
	parts := []string{e.Message}
	for e.Cause != nil && As(e.Cause, &e) {
		if e.Message != "" && e.Message != parts[len(parts)-1] {
			parts = append(parts, e.Message)
		}
	}
	return strings.Join(parts, ": ")
}

func badRequest(fields map[string][]string) *errdetails.BadRequest {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	br := &errdetails.BadRequest{}
	for _, name := range names {
		for _, desc := range fields[name] {
			br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       name,
				Description: desc,
			})
		}
	}
	return br
}

// FromGRPCError converts a gRPC error back into an *Error, restoring the
// original code (including codes that share a gRPC code) and field
// violations when the details are present.
func FromGRPCError(err error) error {
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	customErr := &Error{
		Code:    grpcCodeToCode(st.Code()),
		Message: st.Message(),
	}

	for _, detail := range st.Details() {
		switch d := detail.(type) {
		case *errdetails.ErrorInfo:
			if d.GetDomain() == errorDomain && d.GetReason() != "" {
				customErr.Code = Code(d.GetReason())
			}
			for k, v := range d.GetMetadata() {
				customErr.WithMeta(k, v)
			}
		case *errdetails.BadRequest:
			fields := make(map[string][]string)
			for _, fv := range d.GetFieldViolations() {
				fields[fv.GetField()] = append(fields[fv.GetField()], fv.GetDescription())
			}
			customErr.WithMeta(MetaValidationErrors, fields)
		}
	}

	return customErr
}

// GRPCCode returns the corresponding gRPC code
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeOK:
		return codes.OK
	case CodeCanceled:
		return codes.Canceled
	case CodeInvalidArgument:
		return codes.InvalidArgument
	case CodeDeadlineExceeded:
		return codes.DeadlineExceeded
	case CodeNotFound:
		return codes.NotFound
	case CodeAlreadyExists:
		return codes.AlreadyExists
	case CodeFailedPrecondition:
		return codes.FailedPrecondition
	case CodeAborted, CodeGenerationFailed:
		return codes.Aborted
	case CodeUnimplemented:
		return codes.Unimplemented
	case CodeInternal:
		return codes.Internal
	case CodeUnavailable:
		return codes.Unavailable
	default:
		return codes.Unknown
	}
}

// grpcCodeToCode converts a gRPC code to our error code
func grpcCodeToCode(grpcCode codes.Code) Code {
	switch grpcCode {
	case codes.OK:
		return CodeOK
	case codes.Canceled:
		return CodeCanceled
	case codes.InvalidArgument:
		return CodeInvalidArgument
	case codes.DeadlineExceeded:
		return CodeDeadlineExceeded
	case codes.NotFound:
		return CodeNotFound
	case codes.AlreadyExists:
		return CodeAlreadyExists
	case codes.FailedPrecondition:
		return CodeFailedPrecondition
	case codes.Aborted:
		return CodeAborted
	case codes.Unimplemented:
		return CodeUnimplemented
	case codes.Unavailable:
		return CodeUnavailable
	default:
		return CodeInternal
	}
}
