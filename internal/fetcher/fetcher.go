// Package fetcher 负责从远端获取语料压缩包并解压为本地 .txt 文件。
package fetcher

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"wiki-qa-go/pkg/log"
)

// FetchArchive 下载 url 指向的 zip 压缩包并把其中的 .txt 文件解压到 outputDir。
// outputDir 已经包含文件时跳过下载（幂等），返回解压出的文件数。
func FetchArchive(ctx context.Context, url, outputDir string) (int, error) {
	if entries, err := os.ReadDir(outputDir); err == nil && len(entries) > 0 {
		log.Infof("[Fetcher] 目录 '%s' 已有 %d 个文件，跳过下载", outputDir, len(entries))
		return 0, nil
	}
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return 0, fmt.Errorf("创建语料目录失败: %w", err)
	}

	log.Infof("[Fetcher] 开始下载语料压缩包: %s", url)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return 0, fmt.Errorf("创建下载请求失败: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("下载语料压缩包失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("下载语料压缩包返回非 200 状态码: %s", resp.Status)
	}

	// zip 需要随机访问，先落盘为临时文件
	tmp, err := os.CreateTemp("", "corpus-*.zip")
	if err != nil {
		return 0, fmt.Errorf("创建临时文件失败: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	size, err := io.Copy(tmp, resp.Body)
	if err != nil {
		return 0, fmt.Errorf("写入临时文件失败: %w", err)
	}
	log.Infof("[Fetcher] 压缩包下载完成, 大小: %d 字节", size)

	return extractTxtFiles(tmp.Name(), outputDir)
}

// extractTxtFiles 从 zip 文件解压全部 .txt 条目到 outputDir，目录结构被展平。
func extractTxtFiles(zipPath, outputDir string) (int, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return 0, fmt.Errorf("打开压缩包失败: %w", err)
	}
	defer zr.Close()

	count := 0
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, ".txt") {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return count, fmt.Errorf("读取压缩包条目 '%s' 失败: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return count, fmt.Errorf("读取压缩包条目 '%s' 失败: %w", f.Name, err)
		}

		// 只取文件名部分，防止条目路径里带 ../ 逃出目标目录
		name := filepath.Base(f.Name)
		dest := filepath.Join(outputDir, name)
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return count, fmt.Errorf("写入语料文件 '%s' 失败: %w", dest, err)
		}
		count++
	}

	log.Infof("[Fetcher] 解压完成, 共 %d 个 .txt 文件到 '%s'", count, outputDir)
	return count, nil
}
