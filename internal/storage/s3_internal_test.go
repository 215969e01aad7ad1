package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
)

func TestIsS3NotFound(t *testing.T) {
	t.Parallel()

	apiErr := func(code string) error {
		return fmt.Errorf("operation error S3: %w", &smithy.GenericAPIError{Code: code})
	}
	objectCodes := []string{"NoSuchKey", "NotFound"}
	bucketCodes := []string{"NotFound", "NoSuchBucket"}

	tests := []struct {
		name       string
		err        error
		wantObject bool
		wantBucket bool
	}{
		{"missing object", apiErr("NoSuchKey"), true, false},
		{"head not found", apiErr("NotFound"), true, true},
		{"missing bucket is not a missing object", apiErr("NoSuchBucket"), false, true},
		{"access denied", apiErr("AccessDenied"), false, false},
		{"not an API error", errors.New("connection refused"), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantObject, isS3NotFound(tt.err, objectCodes...))
			assert.Equal(t, tt.wantBucket, isS3NotFound(tt.err, bucketCodes...))
		})
	}
}
