package storage

import (
	"context"

	"github.com/jhonlemus05/FastBite-Delivery/config"
)

// Connect builds the disk selected by STORAGE_DISK. An "s3" disk without a
// bucket is a configuration error.
func Connect(ctx context.Context) (Disk, error) {
	if config.StorageDefault() == "s3" {
		return NewS3(ctx, S3Options{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			URL:      config.StorageS3URL(),
		})
	}
	return NewLocal(config.StorageLocalRoot(), config.StorageURL()), nil
}
