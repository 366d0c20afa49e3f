// Package oss forwards object-storage transfers to a SandGrid session.
// The session performs the actual bucket I/O; the SDK only carries the
// tool calls, so uploads and downloads move data between the sandbox and
// the object store without passing through the client.
package oss

import (
	"context"

	"github.com/sandgrid/sandgrid-go/apierror"
	"github.com/sandgrid/sandgrid-go/internal/logger"
)

// Caller issues tool calls inside a session. Satisfied by the SDK's
// transport client; tests supply in-memory fakes.
type Caller interface {
	CallTool(ctx context.Context, sessionID, name string, args any) (string, error)
}

// Oss drives the object-storage tools of one session
type Oss struct {
	caller    Caller
	sessionID string
	log       logger.Logger
}

// New creates an Oss bound to a session
func New(caller Caller, sessionID string) *Oss {
	return &Oss{
		caller:    caller,
		sessionID: sessionID,
		log:       logger.With("component", "oss", "session_id", sessionID),
	}
}

type envInitArgs struct {
	Endpoint        string `json:"endpoint"`
	AccessKeyID     string `json:"access_key_id"`
	AccessKeySecret string `json:"access_key_secret"`
	SecurityToken   string `json:"security_token,omitempty"`
	Region          string `json:"region,omitempty"`
}

// EnvInit installs object-storage credentials inside the session. It must
// be called before Upload or Download; the anonymous variants work without
// it.
func (o *Oss) EnvInit(ctx context.Context, endpoint, accessKeyID, accessKeySecret, securityToken, region string) error {
	op := "oss.env_init"
	if endpoint == "" {
		return apierror.New(apierror.CodeInvalidInput, op, "endpoint cannot be empty")
	}
	if accessKeyID == "" || accessKeySecret == "" {
		return apierror.New(apierror.CodeInvalidInput, op, "access key id and secret are required")
	}

	o.log.Debug("initializing object-storage environment", "endpoint", endpoint, "region", region)

	_, err := o.caller.CallTool(ctx, o.sessionID, "oss_env_init", envInitArgs{
		Endpoint:        endpoint,
		AccessKeyID:     accessKeyID,
		AccessKeySecret: accessKeySecret,
		SecurityToken:   securityToken,
		Region:          region,
	})
	return err
}

type bucketArgs struct {
	Bucket string `json:"bucket"`
	Object string `json:"object"`
	Path   string `json:"path"`
}

type urlArgs struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// Upload copies a sandbox file at path to bucket/object. Returns the
// remote's result message.
func (o *Oss) Upload(ctx context.Context, bucket, object, path string) (string, error) {
	if err := checkBucketArgs("oss.upload", bucket, object, path); err != nil {
		return "", err
	}

	return o.caller.CallTool(ctx, o.sessionID, "oss_upload", bucketArgs{
		Bucket: bucket,
		Object: object,
		Path:   path,
	})
}

// UploadAnonymous copies a sandbox file at path to a pre-signed URL
func (o *Oss) UploadAnonymous(ctx context.Context, url, path string) (string, error) {
	if err := checkURLArgs("oss.upload_anonymous", url, path); err != nil {
		return "", err
	}

	return o.caller.CallTool(ctx, o.sessionID, "oss_upload_anon", urlArgs{URL: url, Path: path})
}

// Download copies bucket/object into the sandbox at path
func (o *Oss) Download(ctx context.Context, bucket, object, path string) (string, error) {
	if err := checkBucketArgs("oss.download", bucket, object, path); err != nil {
		return "", err
	}

	return o.caller.CallTool(ctx, o.sessionID, "oss_download", bucketArgs{
		Bucket: bucket,
		Object: object,
		Path:   path,
	})
}

// DownloadAnonymous copies the content behind a public or pre-signed URL
// into the sandbox at path
func (o *Oss) DownloadAnonymous(ctx context.Context, url, path string) (string, error) {
	if err := checkURLArgs("oss.download_anonymous", url, path); err != nil {
		return "", err
	}

	return o.caller.CallTool(ctx, o.sessionID, "oss_download_anon", urlArgs{URL: url, Path: path})
}

func checkBucketArgs(op, bucket, object, path string) error {
	if bucket == "" || object == "" {
		return apierror.New(apierror.CodeInvalidInput, op, "bucket and object are required")
	}
	if path == "" {
		return apierror.Wrap(apierror.CodeInvalidInput, op, "empty path", apierror.ErrEmptyPath)
	}
	return nil
}

func checkURLArgs(op, url, path string) error {
	if url == "" {
		return apierror.New(apierror.CodeInvalidInput, op, "url cannot be empty")
	}
	if path == "" {
		return apierror.Wrap(apierror.CodeInvalidInput, op, "empty path", apierror.ErrEmptyPath)
	}
	return nil
}
