// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

// DocumentIngestTask represents the data structure for a document ingest job.
// 对象已经上传到 MinIO，消费端根据 ObjectName 取回原始文本。
type DocumentIngestTask struct {
	FileMD5    string `json:"file_md5"`
	ObjectName string `json:"object_name"`
	FileName   string `json:"file_name"`
	Source     string `json:"source"`
}
