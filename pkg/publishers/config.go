package publishers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported publisher types.
const (
	TypeSQS       = "sqs"
	TypeSNS       = "sns"
	TypeHTTP      = "http"
	TypeGCPPubSub = "gcp_pubsub"
	TypeKafka     = "kafka"
)

// File is the decoded publishers file: the sinks menu events fan out to.
type File struct {
	Publishers []PublisherConfig `json:"publishers" yaml:"publishers"`
}

// PublisherConfig is one sink. Exactly the block matching Type is read.
type PublisherConfig struct {
	ID        string                    `json:"id" yaml:"id"`
	Type      string                    `json:"type" yaml:"type"`
	Enabled   *bool                     `json:"enabled" yaml:"enabled"`
	SQS       *SQSPublisherConfig       `json:"sqs" yaml:"sqs"`
	SNS       *SNSPublisherConfig       `json:"sns" yaml:"sns"`
	HTTP      *HTTPPublisherConfig      `json:"http" yaml:"http"`
	GCPPubSub *GCPPubSubPublisherConfig `json:"gcp_pubsub" yaml:"gcp_pubsub"`
	Kafka     *KafkaPublisherConfig     `json:"kafka" yaml:"kafka"`
}

// AWSConfig carries the connection settings shared by SQS and SNS.
// Static keys are optional; the default credential chain applies otherwise.
type AWSConfig struct {
	Region          string `json:"region" yaml:"region"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// SQSPublisherConfig sends each menu event as one queue message.
type SQSPublisherConfig struct {
	QueueURL  string `json:"uri" yaml:"uri"`
	AWSConfig `yaml:",inline"`
}

// SNSPublisherConfig publishes each menu event to a topic.
type SNSPublisherConfig struct {
	TopicARN  string `json:"topic_arn" yaml:"topic_arn"`
	AWSConfig `yaml:",inline"`
}

// GCPPubSubPublisherConfig publishes to a Pub/Sub topic.
type GCPPubSubPublisherConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// KafkaPublisherConfig writes events keyed by menu date.
type KafkaPublisherConfig struct {
	Brokers []string `json:"brokers" yaml:"brokers"`
	Topic   string   `json:"topic" yaml:"topic"`
}

// HTTPPublisherConfig delivers events to a webhook.
type HTTPPublisherConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// LoadFile reads the publishers file. The extension picks the decoder and
// unknown keys are rejected, so a misspelt field fails at startup.
func LoadFile(path string) (*File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("publishers file path is empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read publishers file: %w", err)
	}

	var f File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		err = dec.Decode(&f)
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		err = dec.Decode(&f)
	default:
		return nil, fmt.Errorf("publishers file %s: unsupported extension %q (want .yaml, .yml or .json)", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode publishers file %s: %w", path, err)
	}

	if err := f.normalize(); err != nil {
		return nil, err
	}
	return &f, nil
}

// normalize trims every entry, fills defaults and validates it.
func (f *File) normalize() error {
	if len(f.Publishers) == 0 {
		return errors.New("publishers file contains no publishers entries")
	}
	seen := make(map[string]bool, len(f.Publishers))
	for i := range f.Publishers {
		p := &f.Publishers[i]
		if err := p.normalize(); err != nil {
			return fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate publisher id %q", p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

// Enabled returns the entries not switched off, in file order.
func (f *File) Enabled() []PublisherConfig {
	if f == nil {
		return nil
	}
	out := make([]PublisherConfig, 0, len(f.Publishers))
	for _, p := range f.Publishers {
		if p.IsEnabled() {
			out = append(out, p)
		}
	}
	return out
}

// ByID looks an entry up by id.
func (f *File) ByID(id string) (PublisherConfig, bool) {
	if f == nil {
		return PublisherConfig{}, false
	}
	id = strings.TrimSpace(id)
	for _, p := range f.Publishers {
		if p.ID == id {
			return p, true
		}
	}
	return PublisherConfig{}, false
}

// IsEnabled reports the enabled flag; entries are on unless disabled.
func (p PublisherConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// section is the type-specific block of a PublisherConfig.
type section interface {
	normalize() error
}

func (p *PublisherConfig) normalize() error {
	p.ID = strings.TrimSpace(p.ID)
	p.Type = strings.ToLower(strings.TrimSpace(p.Type))
	if p.ID == "" {
		return errors.New("id is required")
	}
	if p.Type == "" {
		return fmt.Errorf("publisher %q: type is required", p.ID)
	}

	var sec section
	switch p.Type {
	case TypeSQS:
		if p.SQS != nil {
			sec = p.SQS
		}
	case TypeSNS:
		if p.SNS != nil {
			sec = p.SNS
		}
	case TypeHTTP:
		if p.HTTP != nil {
			sec = p.HTTP
		}
	case TypeGCPPubSub:
		if p.GCPPubSub != nil {
			sec = p.GCPPubSub
		}
	case TypeKafka:
		if p.Kafka != nil {
			sec = p.Kafka
		}
	default:
		return fmt.Errorf("publisher %q: unknown type %q", p.ID, p.Type)
	}
	if sec == nil {
		return fmt.Errorf("publisher %q: %s block is required", p.ID, p.Type)
	}
	if err := sec.normalize(); err != nil {
		return fmt.Errorf("publisher %q: %s.%w", p.ID, p.Type, err)
	}
	return nil
}

func (c *SQSPublisherConfig) normalize() error {
	c.QueueURL = strings.TrimSpace(c.QueueURL)
	if c.QueueURL == "" {
		return errors.New("uri is required")
	}
	return c.AWSConfig.normalize()
}

func (c *SNSPublisherConfig) normalize() error {
	c.TopicARN = strings.TrimSpace(c.TopicARN)
	if c.TopicARN == "" {
		return errors.New("topic_arn is required")
	}
	return c.AWSConfig.normalize()
}

func (c *AWSConfig) normalize() error {
	c.Region = strings.TrimSpace(c.Region)
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	c.AccessKeyID = strings.TrimSpace(c.AccessKeyID)
	c.SecretAccessKey = strings.TrimSpace(c.SecretAccessKey)
	if c.Region == "" {
		return errors.New("region is required")
	}
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return errors.New("access_key_id and secret_access_key must be set together")
	}
	return nil
}

func (c *GCPPubSubPublisherConfig) normalize() error {
	c.ProjectID = strings.TrimSpace(c.ProjectID)
	c.Topic = strings.TrimSpace(c.Topic)
	c.CredentialsFile = strings.TrimSpace(c.CredentialsFile)
	if c.ProjectID == "" || c.Topic == "" {
		return errors.New("project_id and topic are required")
	}
	return nil
}

func (c *KafkaPublisherConfig) normalize() error {
	c.Topic = strings.TrimSpace(c.Topic)
	brokers := c.Brokers[:0]
	for _, b := range c.Brokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	c.Brokers = brokers
	if len(c.Brokers) == 0 || c.Topic == "" {
		return errors.New("brokers and topic are required")
	}
	return nil
}

const (
	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

func (c *HTTPPublisherConfig) normalize() error {
	c.URL = strings.TrimSpace(c.URL)
	if c.URL == "" {
		return errors.New("url is required")
	}
	c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
	if c.Method == "" {
		c.Method = httpDefaultMethod
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = httpDefaultTimeoutSeconds
	}
	headers := make(map[string]string, len(c.Headers))
	for k, v := range c.Headers {
		if k, v = strings.TrimSpace(k), strings.TrimSpace(v); k != "" && v != "" {
			headers[k] = v
		}
	}
	c.Headers = headers
	return nil
}
