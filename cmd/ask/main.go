// Package main 提供一个命令行问答客户端，向运行中的服务发起提问并打印答案。
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
	"wiki-qa-go/internal/finder"
	"wiki-qa-go/internal/model"

	"github.com/spf13/cobra"
)

var (
	serverURL     string
	topKRetriever int
	topKReader    int
	detailed      bool
)

var rootCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "向 wiki-qa 服务提问并打印抽取到的答案",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := ask(args[0])
		if err != nil {
			return err
		}
		fmt.Println(finder.FormatAnswers(result, !detailed))
		return nil
	},
}

// askResponse 对应服务端的统一响应包装。
type askResponse struct {
	Code    int             `json:"code"`
	Data    *model.QAResult `json:"data"`
	Message string          `json:"message"`
}

func ask(question string) (*model.QAResult, error) {
	payload, err := json.Marshal(model.AskRequest{
		Question:      question,
		TopKRetriever: topKRetriever,
		TopKReader:    topKReader,
	})
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: 120 * time.Second}
	resp, err := client.Post(serverURL+"/api/v1/qa/ask", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("请求服务失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("服务返回异常状态 %d: %s", resp.StatusCode, string(body))
	}

	var wrapped askResponse
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}
	if wrapped.Data == nil {
		return nil, fmt.Errorf("服务响应缺少数据: %s", wrapped.Message)
	}
	return wrapped.Data, nil
}

func init() {
	rootCmd.Flags().StringVar(&serverURL, "server", "http://127.0.0.1:8080", "服务地址")
	rootCmd.Flags().IntVar(&topKRetriever, "top-k-retriever", 0, "检索阶段返回的候选段落数 (0 使用服务端默认值)")
	rootCmd.Flags().IntVar(&topKReader, "top-k-reader", 0, "阅读阶段返回的答案数 (0 使用服务端默认值)")
	rootCmd.Flags().BoolVar(&detailed, "detailed", false, "打印分数与来源等详细信息")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
