package state

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/motionlog/motiond/params"
	"go.etcd.io/bbolt"
)

const backupUploadTimeout = 60 * time.Second

// BackupS3 uploads a consistent snapshot of every trajectory state DB
// under root to the configured S3 bucket. Snapshots are taken through a
// bbolt read transaction, so a live daemon can keep writing.
// The AWS library configures itself from environment variables.
func BackupS3(root string) error {
	if params.AWS_BUCKETNAME == "" {
		return fmt.Errorf("AWS_BUCKETNAME not set")
	}
	if root == "" {
		root = params.DatadirRoot
	}

	// A Session should be shared where possible to take advantage of
	// configuration and credential caching.
	sess := session.Must(session.NewSession())
	svc := s3.New(sess)

	dirs, err := os.ReadDir(filepath.Join(root, params.TrajectoriesDir))
	if err != nil {
		return err
	}

	stamp := time.Now().UTC().Format("2006-01-02")
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		dbPath := filepath.Join(root, params.TrajectoriesDir, d.Name(), params.StateDBName)
		if _, err := os.Stat(dbPath); err != nil {
			continue
		}

		snap, err := snapshotDB(dbPath)
		if err != nil {
			slog.Error("Backup snapshot failed", "trajectory", d.Name(), "error", err)
			continue
		}

		key := path.Join("motiond", stamp, d.Name(), params.StateDBName)
		if err := uploadS3(svc, key, snap); err != nil {
			slog.Error("Backup upload failed", "trajectory", d.Name(), "error", err)
			continue
		}
		slog.Info("Backed up state", "trajectory", d.Name(),
			"bucket", params.AWS_BUCKETNAME, "key", key, "size", len(snap))
	}
	return nil
}

// snapshotDB copies the DB through a read transaction into memory.
func snapshotDB(dbPath string) ([]byte, error) {
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{
		ReadOnly: true,
		Timeout:  5 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	defer db.Close()

	buf := bytes.NewBuffer([]byte{})
	err = db.View(func(tx *bbolt.Tx) error {
		_, err := tx.WriteTo(buf)
		return err
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func uploadS3(svc *s3.S3, key string, data []byte) error {
	// A context with a timeout will abort the upload if it takes too long.
	ctx, cancelFn := context.WithTimeout(context.Background(), backupUploadTimeout)
	defer cancelFn()

	_, err := svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(params.AWS_BUCKETNAME),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("application/octet-stream"),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == request.CanceledErrorCode {
			// The SDK returns CanceledErrorCode when the context killed the request.
			return fmt.Errorf("upload canceled due to timeout: %w", err)
		}
		return err
	}
	return nil
}
