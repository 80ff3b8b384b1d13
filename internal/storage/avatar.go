package storage

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	cos "github.com/tencentyun/cos-go-sdk-v5"
)

// ErrStorageDisabled is returned when the object storage backend is
// not configured.
var ErrStorageDisabled = errors.New("object storage not configured")

var fileNamePattern = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// AvatarStore uploads profile avatars to Tencent COS and hands back
// their public URLs.
type AvatarStore struct {
	client       *cos.Client
	publicDomain string
	enabled      bool
}

// NewAvatarStore creates an avatar store. With missing credentials the
// store is disabled and uploads return ErrStorageDisabled.
func NewAvatarStore(secretID, secretKey, bucketURL, publicDomain string) (*AvatarStore, error) {
	if strings.TrimSpace(secretID) == "" ||
		strings.TrimSpace(secretKey) == "" ||
		strings.TrimSpace(bucketURL) == "" ||
		strings.TrimSpace(publicDomain) == "" {
		return &AvatarStore{enabled: false}, nil
	}

	parsed, err := url.Parse(strings.TrimSpace(bucketURL))
	if err != nil {
		return nil, fmt.Errorf("invalid bucket URL: %w", err)
	}

	client := cos.NewClient(&cos.BaseURL{BucketURL: parsed}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  strings.TrimSpace(secretID),
			SecretKey: strings.TrimSpace(secretKey),
		},
	})

	return &AvatarStore{
		client:       client,
		publicDomain: strings.TrimRight(strings.TrimSpace(publicDomain), "/"),
		enabled:      true,
	}, nil
}

// IsEnabled reports whether uploads are configured
func (s *AvatarStore) IsEnabled() bool {
	return s.enabled
}

// Upload stores avatar bytes under a collision-free key and returns the
// public URL.
func (s *AvatarStore) Upload(ctx context.Context, userID int64, fileName string, data []byte) (string, error) {
	if !s.enabled {
		return "", ErrStorageDisabled
	}
	if len(data) == 0 {
		return "", errors.New("avatar data is empty")
	}

	key := fmt.Sprintf("avatars/%d/%s", userID, buildObjectKey(fileName))
	if _, err := s.client.Object.Put(ctx, key, bytes.NewReader(data), nil); err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	return s.publicDomain + "/" + key, nil
}

func buildObjectKey(fileName string) string {
	return fmt.Sprintf("%d_%s_%s", time.Now().Unix(), randomHex(4), sanitizeFileName(fileName))
}

func sanitizeFileName(fileName string) string {
	base := strings.TrimSpace(filepath.Base(fileName))
	if base == "" || base == "." || base == "/" {
		base = "avatar.jpg"
	}
	base = fileNamePattern.ReplaceAllString(base, "_")
	if base == "" {
		base = "avatar.jpg"
	}
	return base
}

func randomHex(bytesLen int) string {
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "r"
	}
	return hex.EncodeToString(buf)
}
