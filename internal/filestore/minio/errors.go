package minio

import (
	"context"
	"errors"
	"net/http"

	"github.com/koustreak/myschema/internal/errs"
	miniogo "github.com/minio/minio-go/v7"
)

// s3Codes classifies S3 error codes whose HTTP status is ambiguous or
// missing (e.g. responses rebuilt from a listing channel).
var s3Codes = map[string]errs.ErrKind{
	"NoSuchBucket":          errs.ErrKindNotFound,
	"NoSuchKey":             errs.ErrKindNotFound,
	"AccessDenied":          errs.ErrKindPermissionDenied,
	"InvalidAccessKeyId":    errs.ErrKindPermissionDenied,
	"SignatureDoesNotMatch": errs.ErrKindPermissionDenied,
	"InvalidBucketName":     errs.ErrKindInvalidInput,
	"InvalidObjectName":     errs.ErrKindInvalidInput,
	"KeyTooLongError":       errs.ErrKindInvalidInput,
	"EntityTooLarge":        errs.ErrKindInvalidInput,
	"RequestTimeout":        errs.ErrKindTimeout,
	"SlowDown":              errs.ErrKindTimeout,
}

// mapError wraps an SDK error as *errs.Error. Errors that carry no S3
// response are treated as transport failures.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}
	return errs.Wrap(classify(err), msg, err)
}

func classify(err error) errs.ErrKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.ErrKindTimeout
	}

	var resp miniogo.ErrorResponse
	if !errors.As(err, &resp) {
		return errs.ErrKindConnectionFailed
	}
	switch resp.StatusCode {
	case http.StatusNotFound:
		return errs.ErrKindNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return errs.ErrKindPermissionDenied
	case http.StatusBadRequest:
		return errs.ErrKindInvalidInput
	}
	if kind, ok := s3Codes[resp.Code]; ok {
		return kind
	}
	return errs.ErrKindConnectionFailed
}

// bucketOwned reports whether MakeBucket lost a race against another
// writer creating the same bucket under our credentials.
func bucketOwned(err error) bool {
	var resp miniogo.ErrorResponse
	return errors.As(err, &resp) && resp.Code == "BucketAlreadyOwnedByYou"
}
