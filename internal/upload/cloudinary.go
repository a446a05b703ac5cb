package upload

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryUploader stores KYC document images in Cloudinary.
type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryUploader reads credentials from CLOUDINARY_URL.
func NewCloudinaryUploader() (*CloudinaryUploader, error) {
	cld, err := cloudinary.New()
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &CloudinaryUploader{cld: cld}, nil
}

// Upload sends the file and returns its secure URL.
func (u *CloudinaryUploader) Upload(ctx context.Context, folder, filename string, data []byte) (string, error) {
	res, err := u.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       folder,
		PublicID:     filename,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}
	return res.SecureURL, nil
}
