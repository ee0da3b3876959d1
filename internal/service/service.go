package service

import (
	"fmt"

	"github.com/Sujalarora-18/Assignment-Portal/internal/config"
	"github.com/Sujalarora-18/Assignment-Portal/internal/repository"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
)

// Services 服务集合
type Services struct {
	Auth       *AuthService
	User       *UserService
	Department *DepartmentService
	Assignment *AssignmentService
	Workflow   *WorkflowService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config) (*Services, error) {
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("init minio client: %w", err)
		}
	}

	mailer := NewMailer(cfg.SMTP)

	return &Services{
		Auth:       NewAuthService(repos.User, rdb, mailer, cfg),
		User:       NewUserService(repos.User, repos.Department, repos.Assignment),
		Department: NewDepartmentService(repos.Department, repos.User),
		Assignment: NewAssignmentService(repos.Assignment, repos.Department, minioClient, cfg.MinIO.Bucket),
		Workflow:   NewWorkflowService(repos.Assignment, repos.User),
	}, nil
}
