package config

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

type Config struct {
	Paths       PathsConfig       `yaml:"paths"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
	Speech      SpeechConfig      `yaml:"speech"`
	Video       VideoConfig       `yaml:"video"`
	FFmpeg      FFmpegConfig      `yaml:"ffmpeg"`
	Storage     StorageConfig     `yaml:"storage"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

type PathsConfig struct {
	Inbox    string `yaml:"inbox"`
	Archived string `yaml:"archived"`
	Temp     string `yaml:"temp"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

type SummarizerConfig struct {
	Provider      string   `yaml:"provider"`
	Model         string   `yaml:"model"`
	MinWords      int      `yaml:"min_words"`
	MaxWords      int      `yaml:"max_words"`
	MinInputWords int      `yaml:"min_input_words"`
	APIKeys       []string `yaml:"-"`
}

type SpeechConfig struct {
	Provider string        `yaml:"provider"`
	Language string        `yaml:"language"`
	Endpoint string        `yaml:"endpoint"`
	Command  string        `yaml:"command"`
	Args     []string      `yaml:"args"`
	Timeout  time.Duration `yaml:"timeout"`
}

type VideoConfig struct {
	Backend    string           `yaml:"backend"`
	Timeout    time.Duration    `yaml:"timeout"`
	Subprocess SubprocessConfig `yaml:"subprocess"`
	FaceSwap   FaceSwapConfig   `yaml:"faceswap"`
	Remote     RemoteConfig     `yaml:"remote"`
}

type SubprocessConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Dir     string   `yaml:"dir"`
}

type FaceSwapConfig struct {
	CascadePath string `yaml:"cascade_path"`
	BaseVideo   string `yaml:"base_video"`
	MinFaceSize int    `yaml:"min_face_size"`
	MaxFrames   int    `yaml:"max_frames"`
}

type RemoteConfig struct {
	Endpoint      string        `yaml:"endpoint"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	MaxAttempts   int           `yaml:"max_attempts"`
	RetryAttempts int           `yaml:"retry_attempts"`
	APIKey        string        `yaml:"-"`
}

type FFmpegConfig struct {
	Binary       string `yaml:"binary"`
	Probe        string `yaml:"probe"`
	Encoder      string `yaml:"encoder"`
	Preset       string `yaml:"preset"`
	CRF          int    `yaml:"crf"`
	AudioBitrate string `yaml:"audio_bitrate"`
}

type StorageConfig struct {
	Blob    string       `yaml:"blob"`
	Records string       `yaml:"records"`
	Local   LocalConfig  `yaml:"local"`
	MinIO   MinIOConfig  `yaml:"minio"`
	S3      S3Config     `yaml:"s3"`
	SQLite  SQLiteConfig `yaml:"sqlite"`
	Dynamo  DynamoConfig `yaml:"dynamodb"`
}

type LocalConfig struct {
	Root string `yaml:"root"`
}

type MinIOConfig struct {
	Endpoint        string `yaml:"endpoint"`
	Bucket          string `yaml:"bucket"`
	UseSSL          bool   `yaml:"use_ssl"`
	AccessKeyID     string `yaml:"-"`
	SecretAccessKey string `yaml:"-"`
}

type S3Config struct {
	Bucket string `yaml:"bucket"`
	Region string `yaml:"region"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type DynamoConfig struct {
	Table  string `yaml:"table"`
	Region string `yaml:"region"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

func (c *Config) Validate() error {
	if c.Paths.Inbox == "" {
		return fmt.Errorf("paths.inbox is required")
	}

	if c.Paths.Archived == "" {
		c.Paths.Archived = "data/archived"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "auto"
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}

	if err := c.validateSummarizer(); err != nil {
		return err
	}
	if err := c.validateSpeech(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}

	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = "ffmpeg"
	}
	if c.FFmpeg.Probe == "" {
		c.FFmpeg.Probe = "ffprobe"
	}
	if c.FFmpeg.Encoder == "" {
		c.FFmpeg.Encoder = "libx264"
	}
	if c.FFmpeg.Preset == "" {
		c.FFmpeg.Preset = "medium"
	}
	if c.FFmpeg.CRF == 0 {
		c.FFmpeg.CRF = 23
	}
	if c.FFmpeg.AudioBitrate == "" {
		c.FFmpeg.AudioBitrate = "128k"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "resume-video"
	}

	return nil
}

func (c *Config) validateSummarizer() error {
	s := &c.Summarizer
	if s.Provider == "" {
		s.Provider = "gemini"
	}
	if s.Model == "" {
		s.Model = "gemini-2.5-flash"
	}
	if s.MinWords == 0 {
		s.MinWords = 100
	}
	if s.MaxWords == 0 {
		s.MaxWords = 150
	}
	if s.MinInputWords == 0 {
		s.MinInputWords = 20
	}

	switch s.Provider {
	case "gemini":
		if len(s.APIKeys) == 0 {
			return fmt.Errorf("summarizer: gemini provider needs GEMINI_API_KEYS")
		}
	case "extractive":
	default:
		return fmt.Errorf("summarizer.provider %q is not one of gemini, extractive", s.Provider)
	}

	if s.MinWords < 0 || s.MaxWords <= 0 || s.MinWords > s.MaxWords {
		return fmt.Errorf("summarizer: invalid word bounds min=%d max=%d", s.MinWords, s.MaxWords)
	}
	return nil
}

func (c *Config) validateSpeech() error {
	s := &c.Speech
	if s.Provider == "" {
		s.Provider = "translate"
	}
	if s.Language == "" {
		s.Language = "en"
	}
	if s.Timeout == 0 {
		s.Timeout = 2 * time.Minute
	}
	if _, err := language.Parse(s.Language); err != nil {
		return fmt.Errorf("speech.language %q: %w", s.Language, err)
	}

	switch s.Provider {
	case "translate":
		if s.Endpoint == "" {
			s.Endpoint = "https://translate.google.com/translate_tts"
		}
	case "command":
		if s.Command == "" {
			return fmt.Errorf("speech.command is required for the command provider")
		}
	default:
		return fmt.Errorf("speech.provider %q is not one of translate, command", s.Provider)
	}
	return nil
}

func (c *Config) validateVideo() error {
	v := &c.Video
	if v.Backend == "" {
		v.Backend = "subprocess"
	}
	if v.Timeout == 0 {
		v.Timeout = 10 * time.Minute
	}

	switch v.Backend {
	case "subprocess":
		if v.Subprocess.Command == "" {
			v.Subprocess.Command = "python"
		}
		if len(v.Subprocess.Args) == 0 {
			v.Subprocess.Args = []string{"Portrait-Animation/inference.py"}
		}
	case "faceswap":
		if v.FaceSwap.CascadePath == "" {
			return fmt.Errorf("video.faceswap.cascade_path is required")
		}
		if v.FaceSwap.BaseVideo == "" {
			return fmt.Errorf("video.faceswap.base_video is required")
		}
		if v.FaceSwap.MinFaceSize == 0 {
			v.FaceSwap.MinFaceSize = 40
		}
	case "remote":
		if v.Remote.Endpoint == "" {
			return fmt.Errorf("video.remote.endpoint is required")
		}
		if v.Remote.APIKey == "" {
			return fmt.Errorf("video: remote backend needs REMOTE_VIDEO_API_KEY")
		}
		v.Remote.Endpoint = strings.TrimRight(v.Remote.Endpoint, "/")
		if v.Remote.PollInterval == 0 {
			v.Remote.PollInterval = 10 * time.Second
		}
		if v.Remote.MaxAttempts == 0 {
			v.Remote.MaxAttempts = 30
		}
		if v.Remote.RetryAttempts == 0 {
			v.Remote.RetryAttempts = 3
		}
	default:
		return fmt.Errorf("video.backend %q is not one of subprocess, faceswap, remote", v.Backend)
	}
	return nil
}

func (c *Config) validateStorage() error {
	s := &c.Storage
	if s.Blob == "" {
		s.Blob = "local"
	}
	if s.Records == "" {
		s.Records = "sqlite"
	}

	switch s.Blob {
	case "local":
		if s.Local.Root == "" {
			s.Local.Root = "data/media"
		}
	case "minio":
		if s.MinIO.Endpoint == "" || s.MinIO.Bucket == "" {
			return fmt.Errorf("storage.minio endpoint and bucket are required")
		}
	case "s3":
		if s.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required")
		}
	default:
		return fmt.Errorf("storage.blob %q is not one of local, minio, s3", s.Blob)
	}

	switch s.Records {
	case "sqlite":
		if s.SQLite.Path == "" {
			s.SQLite.Path = "data/records.db"
		}
	case "dynamodb":
		if s.Dynamo.Table == "" {
			return fmt.Errorf("storage.dynamodb.table is required")
		}
	default:
		return fmt.Errorf("storage.records %q is not one of sqlite, dynamodb", s.Records)
	}
	return nil
}
