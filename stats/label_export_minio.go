package stats

import (
	"bytes"
	"context"
	"io/ioutil"

	"yolo-lab-api/utils"

	"github.com/minio/minio-go/v7"
)

type MinIOStorage struct {
	minioClient *minio.Client
	bucketName  string
}

func NewMinIOStorage(minioClient *minio.Client, bucketName string) *MinIOStorage {
	return &MinIOStorage{
		minioClient: minioClient,
		bucketName:  bucketName,
	}
}

// MakeBucket creates the bucket unless we already own it.
func (storage *MinIOStorage) MakeBucket(ctx context.Context) error {
	err := storage.minioClient.MakeBucket(ctx, storage.bucketName, minio.MakeBucketOptions{})
	if err == nil {
		utils.LogInfo("Successfully created %s", storage.bucketName)
		return nil
	}
	exists, errBucketExists := storage.minioClient.BucketExists(ctx, storage.bucketName)
	if errBucketExists == nil && exists {
		return nil
	}
	return err
}

//StoreFile store
func (storage *MinIOStorage) StoreFile(ctx context.Context, objectName string, fileData []byte, contentType string) error {
	if err := storage.MakeBucket(ctx); err != nil {
		return err
	}
	info, err := storage.minioClient.PutObject(ctx, storage.bucketName, objectName, bytes.NewReader(fileData), int64(len(fileData)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return err
	}
	utils.LogInfo("Successfully uploaded %s of size %d", objectName, info.Size)
	return nil
}

func (storage *MinIOStorage) DownloadFile(ctx context.Context, objectName string) ([]byte, error) {
	file, err := storage.minioClient.GetObject(ctx, storage.bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ioutil.ReadAll(file)
}
