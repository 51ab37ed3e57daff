package cloudinary

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// UploadResult carries the fields the catalog stores for an uploaded asset.
type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

type Client interface {
	Upload(ctx context.Context, file io.Reader, filename string) (*UploadResult, error)
	Destroy(ctx context.Context, publicID string) error
}

type cloudinaryClient struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewClient(cloudName, apiKey, apiSecret, folder string) (Client, error) {

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &cloudinaryClient{cld: cld, folder: folder}, nil
}

func (c *cloudinaryClient) Upload(ctx context.Context, file io.Reader, filename string) (*UploadResult, error) {

	resp, err := c.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:           c.folder,
		FilenameOverride: filename,
	})
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}

	return &UploadResult{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

func (c *cloudinaryClient) Destroy(ctx context.Context, publicID string) error {

	resp, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("destroy failed: %w", err)
	}

	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("destroy failed: %s", resp.Result)
	}

	return nil
}
