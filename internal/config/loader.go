package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	spotv1alpha1 "github.com/mehdiazizian/spot-score-tracker/api/v1alpha1"
)

// DefaultConfigMapKey is the ConfigMap key read when a reference omits it
const DefaultConfigMapKey = "sps_config.yaml"

// Environment variables naming the S3 location of the document
const (
	S3BucketEnv    = "S3_CONFIGURATION_BUCKET"
	S3ObjectKeyEnv = "S3_CONFIGURATION_OBJECT_KEY"
)

// Loader retrieves a configuration document. Every error it returns is a
// *FatalLoadError.
type Loader interface {
	Load(ctx context.Context) (*Document, error)
}

// StaticLoader serves an already deserialized document
type StaticLoader struct {
	Dashboards []spotv1alpha1.Dashboard
}

// Load validates a copy of the inline dashboards
func (l *StaticLoader) Load(_ context.Context) (*Document, error) {
	doc := &Document{Dashboards: make([]spotv1alpha1.Dashboard, len(l.Dashboards))}
	for i := range l.Dashboards {
		l.Dashboards[i].DeepCopyInto(&doc.Dashboards[i])
	}
	if err := doc.Validate(); err != nil {
		return nil, fatal("inline document", err)
	}
	doc.ApplyDefaults()
	return doc, nil
}

// FileLoader reads a document from the local filesystem
type FileLoader struct {
	Path string
}

// Load reads and parses the file
func (l *FileLoader) Load(ctx context.Context) (*Document, error) {
	logger := log.FromContext(ctx).WithName("config")
	source := fmt.Sprintf("file %s", l.Path)

	data, err := os.ReadFile(filepath.Clean(l.Path))
	if err != nil {
		return nil, fatal(source, err)
	}
	logger.Info("Loaded configuration file", "path", l.Path, "bytes", len(data))
	return Parse(source, data)
}

// ConfigMapLoader reads a document from a ConfigMap key
type ConfigMapLoader struct {
	Client    client.Client
	Namespace string
	Name      string
	Key       string
}

// Load fetches the ConfigMap and parses the selected key
func (l *ConfigMapLoader) Load(ctx context.Context) (*Document, error) {
	key := l.Key
	if key == "" {
		key = DefaultConfigMapKey
	}
	source := fmt.Sprintf("configmap %s/%s[%s]", l.Namespace, l.Name, key)

	cm := &corev1.ConfigMap{}
	if err := l.Client.Get(ctx, types.NamespacedName{Namespace: l.Namespace, Name: l.Name}, cm); err != nil {
		return nil, fatal(source, err)
	}

	if data, ok := cm.Data[key]; ok {
		return Parse(source, []byte(data))
	}
	if data, ok := cm.BinaryData[key]; ok {
		return Parse(source, data)
	}
	return nil, fatal(source, fmt.Errorf("key %q not found", key))
}

// S3API is the subset of the S3 client used by S3Loader
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Loader reads a document from an S3 object
type S3Loader struct {
	Client S3API
	Bucket string
	Key    string
}

// NewS3LoaderFromEnv builds an S3Loader from S3_CONFIGURATION_BUCKET and
// S3_CONFIGURATION_OBJECT_KEY
func NewS3LoaderFromEnv(api S3API) (*S3Loader, error) {
	bucket := os.Getenv(S3BucketEnv)
	if bucket == "" {
		return nil, fmt.Errorf("could not find required environment variable %s", S3BucketEnv)
	}
	key := os.Getenv(S3ObjectKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("could not find required environment variable %s", S3ObjectKeyEnv)
	}
	return &S3Loader{Client: api, Bucket: bucket, Key: key}, nil
}

// Load downloads and parses the object
func (l *S3Loader) Load(ctx context.Context) (*Document, error) {
	logger := log.FromContext(ctx).WithName("config")
	source := fmt.Sprintf("s3://%s/%s", l.Bucket, l.Key)

	if l.Client == nil {
		return nil, fatal(source, errors.New("no S3 client configured"))
	}

	logger.Info("Fetching configuration", "bucket", l.Bucket, "key", l.Key)
	out, err := l.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.Bucket),
		Key:    aws.String(l.Key),
	})
	if err != nil {
		return nil, fatal(source, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fatal(source, fmt.Errorf("failed to read object body: %w", err))
	}
	return Parse(source, data)
}

// ForTracker selects the loader matching the document source of a tracker
func ForTracker(c client.Client, s3api S3API, tracker *spotv1alpha1.ScoreTracker) (Loader, error) {
	spec := tracker.Spec
	sources := 0
	if len(spec.Dashboards) > 0 {
		sources++
	}
	if spec.ConfigMapRef != nil {
		sources++
	}
	if spec.S3 != nil {
		sources++
	}
	source := fmt.Sprintf("scoretracker %s/%s", tracker.Namespace, tracker.Name)
	if sources != 1 {
		return nil, fatal(source, fmt.Errorf("exactly one of dashboards, configMapRef or s3 must be set, got %d", sources))
	}

	switch {
	case spec.ConfigMapRef != nil:
		return &ConfigMapLoader{
			Client:    c,
			Namespace: tracker.Namespace,
			Name:      spec.ConfigMapRef.Name,
			Key:       spec.ConfigMapRef.Key,
		}, nil
	case spec.S3 != nil:
		return &S3Loader{Client: s3api, Bucket: spec.S3.Bucket, Key: spec.S3.Key}, nil
	default:
		return &StaticLoader{Dashboards: spec.Dashboards}, nil
	}
}
