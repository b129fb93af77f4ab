package playlist

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/Advansoftware/m3utostrm/internal/utils"
)

// FetchTimeout bounds the network fetch of a playlist source.
const FetchTimeout = 10 * time.Second

// Load obtains the raw playlist lines from a source. useFile forces a local
// file read; otherwise the source scheme picks the fetcher (s3:// or http).
// A source that cannot be obtained is an error, never an empty success.
func Load(source string, useFile bool) ([]string, error) {
	if useFile {
		return ReadFile(source)
	}
	if strings.HasPrefix(source, "s3://") {
		return FetchS3(source)
	}
	return FetchURL(source)
}

// ReadFile reads a playlist from the local filesystem.
func ReadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading playlist file: %v", err)
	}
	return splitLines(string(data)), nil
}

// FetchURL downloads a playlist over HTTP with a bounded timeout.
func FetchURL(url string) ([]string, error) {
	client := utils.NewHTTPClient(utils.HTTPClientConfig{Timeout: FetchTimeout})
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("error fetching playlist: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("error fetching playlist: status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading playlist body: %v", err)
	}
	return splitLines(string(body)), nil
}

// FetchS3 downloads a playlist object from S3 (s3://bucket/key).
func FetchS3(url string) ([]string, error) {
	bucket, key, err := parseS3URL(url)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), FetchTimeout)
	defer cancel()
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRetryMode("adaptive"))
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %v", err)
	}
	client := s3.NewFromConfig(cfg)
	downloader := manager.NewDownloader(client)
	buf := manager.NewWriteAtBuffer(nil)
	if _, err := downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return nil, fmt.Errorf("error fetching s3://%s/%s: %v", bucket, key, err)
	}
	log.Debug().Str("op", "playlist/source").Msgf("Fetched %d bytes from s3://%s/%s", len(buf.Bytes()), bucket, key)
	return splitLines(string(buf.Bytes())), nil
}

func parseS3URL(url string) (string, string, error) {
	url = strings.TrimPrefix(url, "s3://")
	parts := strings.SplitN(url, "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid S3 URL format")
	}
	return parts[0], parts[1], nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}
