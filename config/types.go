package config

type Config struct {
	Debug   bool    `mapstructure:"debug"`
	Server  Server  `mapstructure:"server"`
	Auth    Auth    `mapstructure:"auth"`
	Blobs   Blobs   `mapstructure:"blobs"`
	Records Records `mapstructure:"records"`
}

type Server struct {
	Address string       `mapstructure:"address" validate:"required,hostname|ip"`
	Port    int          `mapstructure:"port" validate:"required,min=1,max=65535"`
	Limits  ServerLimits `mapstructure:"limits"`
}

type ServerLimits struct {
	// MaxMultipartMem bounds the bytes of a multipart body held in memory
	// while parsing; the rest spills to temp files.
	MaxMultipartMem uint `mapstructure:"max_multipart_mem" validate:"required"`
	// MaxFileSize bounds each uploaded file part, in bytes.
	MaxFileSize uint `mapstructure:"max_file_size" validate:"required"`
}

type Auth struct {
	Enabled   bool   `mapstructure:"enabled"`
	JwtSecret string `mapstructure:"jwt_secret" validate:"required_if=Enabled true"`
	TokenTtl  uint   `mapstructure:"token_ttl_hours"`
}

type Blobs struct {
	Strategy string `mapstructure:"strategy" validate:"required,oneof=filesystem s3 noop"`
	// PublicBaseUrl is the prefix blob refs are served under, e.g. "/uploads".
	PublicBaseUrl string                  `mapstructure:"public_base_url" validate:"required"`
	PathPattern   string                  `mapstructure:"path_pattern"`
	Filesystem    *FilesystemBlobStrategy `mapstructure:"filesystem" validate:"required_if=Strategy filesystem"`
	S3            *S3BlobStrategy         `mapstructure:"s3" validate:"required_if=Strategy s3"`
}

type FilesystemBlobStrategy struct {
	Path string `mapstructure:"path" validate:"required,abspath"`
}

type S3BlobStrategy struct {
	AccessKeyId string `mapstructure:"access_key_id" validate:"required"`
	SecretKeyId string `mapstructure:"secret_key_id" validate:"required"`
	Region      string `mapstructure:"region" validate:"required"`
	Bucket      string `mapstructure:"bucket" validate:"required"`
	Endpoint    string `mapstructure:"endpoint"`
}

type Records struct {
	Strategy string             `mapstructure:"strategy" validate:"required,oneof=sql memory"`
	Sql      *SQLRecordStrategy `mapstructure:"sql" validate:"required_if=Strategy sql"`
}

type SQLRecordStrategy struct {
	Driver      string  `mapstructure:"driver" validate:"required,oneof=postgres mysql"`
	DSN         string  `mapstructure:"dsn" validate:"required"`
	TablePrefix *string `mapstructure:"table_prefix" validate:"omitempty,identifier"`
}
