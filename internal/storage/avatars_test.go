package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakePresigner struct {
	lastInput *s3.PutObjectInput
	err       error
}

func (f *fakePresigner) PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*awsPresignedRequest, error) {
	f.lastInput = in
	if f.err != nil {
		return nil, f.err
	}
	return &awsPresignedRequest{URL: "https://s3.local/" + *in.Bucket + "/" + *in.Key + "?signed"}, nil
}

func TestPresignAvatarUpload(t *testing.T) {
	fp := &fakePresigner{}
	store := &AvatarStore{bucket: "sportbuddy-avatars", presign: fp}

	up, err := store.PresignAvatarUpload(context.Background(), 42)
	if err != nil {
		t.Fatalf("PresignAvatarUpload: %v", err)
	}
	if !strings.HasPrefix(up.Key, "avatars/42/") {
		t.Errorf("Key = %q, want avatars/42/ prefix", up.Key)
	}
	if *fp.lastInput.Bucket != "sportbuddy-avatars" {
		t.Errorf("Bucket = %q, want sportbuddy-avatars", *fp.lastInput.Bucket)
	}
	if !strings.Contains(up.URL, up.Key) {
		t.Errorf("URL = %q, want to contain key %q", up.URL, up.Key)
	}
}

func TestPresignAvatarUpload_KeysAreUnique(t *testing.T) {
	store := &AvatarStore{bucket: "b", presign: &fakePresigner{}}
	ctx := context.Background()

	first, err := store.PresignAvatarUpload(ctx, 42)
	if err != nil {
		t.Fatalf("PresignAvatarUpload: %v", err)
	}
	second, err := store.PresignAvatarUpload(ctx, 42)
	if err != nil {
		t.Fatalf("PresignAvatarUpload: %v", err)
	}
	if first.Key == second.Key {
		t.Errorf("keys collide: %q", first.Key)
	}
}

func TestPresignAvatarUpload_Error(t *testing.T) {
	store := &AvatarStore{bucket: "b", presign: &fakePresigner{err: errors.New("s3 down")}}

	_, err := store.PresignAvatarUpload(context.Background(), 42)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "presign avatar upload") {
		t.Errorf("error = %q, want wrapped presign error", err.Error())
	}
}
