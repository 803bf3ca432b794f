// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Admin         AdminConfig         `mapstructure:"admin"`
	Log           LogConfig           `mapstructure:"log"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	Corpus        CorpusConfig        `mapstructure:"corpus"`
	Retriever     RetrieverConfig     `mapstructure:"retriever"`
	Reader        ReaderConfig        `mapstructure:"reader"`
	Cache         CacheConfig         `mapstructure:"cache"`
}

// ServerConfig 存储 HTTP 服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig 存储 JWT 相关的配置。
type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
}

// AdminConfig 存储管理员凭据，密码以 bcrypt 哈希形式存放。
type AdminConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// KafkaConfig 存储 Kafka 相关的配置。
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// ElasticsearchConfig 存储 Elasticsearch 相关的配置。
type ElasticsearchConfig struct {
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

// MinIOConfig 存储 MinIO 对象存储的配置。
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// CorpusConfig 存储语料库获取相关的配置。
type CorpusConfig struct {
	// ArchiveURL 是包含 .txt 语料文件的 zip 压缩包地址。
	ArchiveURL string `mapstructure:"archive_url"`
	// DataDir 是压缩包解压后的本地目录。
	DataDir string `mapstructure:"data_dir"`
	// AutoFetch 为 true 时，服务启动后自动获取并导入语料。
	AutoFetch bool `mapstructure:"auto_fetch"`
}

// RetrieverConfig 存储检索器相关的配置。
type RetrieverConfig struct {
	// Backend 可选 "tfidf"（内存 TF-IDF 矩阵）或 "elastic"（ES BM25）。
	Backend string `mapstructure:"backend"`
	// DefaultTopK 是未显式指定时检索阶段返回的候选段落数。
	DefaultTopK int `mapstructure:"default_top_k"`
}

// ReaderConfig 存储阅读理解模型推理服务相关的配置。
type ReaderConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	// Model 是推理服务端加载的抽取式问答模型名。
	Model string `mapstructure:"model"`
	// DefaultTopK 是未显式指定时阅读阶段返回的答案数。
	DefaultTopK    int `mapstructure:"default_top_k"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// CacheConfig 存储答案缓存相关的配置。
type CacheConfig struct {
	AnswerTTLMinutes int `mapstructure:"answer_ttl_minutes"`
}

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
func Init(configPath string) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("读取配置文件失败: %w", err))
	}

	if err := viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("无法将配置解析到结构体中: %w", err))
	}
}
