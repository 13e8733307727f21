package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hibiken/asynq"
	"github.com/nfnt/resize"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/inaciosamuel465/estateflow/internal/config"
	"github.com/inaciosamuel465/estateflow/internal/email"
	"github.com/inaciosamuel465/estateflow/internal/services"
	"github.com/inaciosamuel465/estateflow/internal/state"
	"github.com/inaciosamuel465/estateflow/internal/storage"
)

// Task types handled by the background workers.
const (
	TypeContractExpiryScan = "contract:expiry:scan"
	TypeLeadEmail          = "lead:email"
	TypeImageProcess       = "image:process"
)

// --- Task client (enqueuing) ---

func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	})
}

// NewExpiryScanTask builds the recurring expiry scan task. The handler
// re-enqueues it after each run, so a single initial enqueue keeps the scan
// alive for the life of the deployment.
func NewExpiryScanTask() *asynq.Task {
	return asynq.NewTask(TypeContractExpiryScan, nil, asynq.Queue("default"))
}

// LeadEmailPayload carries a new-lead alert to the brokerage inbox.
type LeadEmailPayload struct {
	LeadName string `json:"lead_name"`
	Message  string `json:"message"`
}

func NewLeadEmailTask(leadName, message string) (*asynq.Task, error) {
	payload, err := json.Marshal(LeadEmailPayload{LeadName: leadName, Message: message})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeLeadEmail, payload, asynq.Queue("default")), nil
}

// ImageTaskPayload points at an uploaded property photo awaiting
// normalization.
type ImageTaskPayload struct {
	S3Key      string `json:"s3_key"`
	PropertyID string `json:"property_id"`
}

func NewImageProcessTask(s3Key, propertyID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ImageTaskPayload{S3Key: s3Key, PropertyID: propertyID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeImageProcess, payload, asynq.Queue("images")), nil
}

// --- Task server (processing) ---

// TaskProcessor holds the dependencies task handlers need.
type TaskProcessor struct {
	cfg             *config.Config
	log             zerolog.Logger
	emailSender     email.Sender
	storageService  storage.IS3Storage
	propertyService services.IPropertyService
	controller      *state.Controller
	taskClient      *asynq.Client
}

func NewTaskProcessor(
	cfg *config.Config,
	log zerolog.Logger,
	emailSender email.Sender,
	storageService storage.IS3Storage,
	propertyService services.IPropertyService,
	controller *state.Controller,
	taskClient *asynq.Client,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:             cfg,
		log:             log,
		emailSender:     emailSender,
		storageService:  storageService,
		propertyService: propertyService,
		controller:      controller,
		taskClient:      taskClient,
	}
}

// SetupServer configures and returns an asynq server with handlers registered
// for the requested worker modes. Returns nil when neither mode is requested.
func SetupServer(rdb *redis.Client, processor *TaskProcessor, isImageWorker, isBgWorker bool) *asynq.Server {
	if !isBgWorker && !isImageWorker {
		return nil
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     rdb.Options().Addr,
			Password: rdb.Options().Password,
			DB:       rdb.Options().DB,
		},
		asynq.Config{
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
				"images":   5,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				processor.log.Error().Err(err).Str("task_type", task.Type()).Msg("task failed")
			}),
		},
	)

	mux := asynq.NewServeMux()
	if isBgWorker {
		mux.HandleFunc(TypeContractExpiryScan, processor.HandleContractExpiryScanTask)
		mux.HandleFunc(TypeLeadEmail, processor.HandleLeadEmailTask)
	}
	if isImageWorker {
		mux.HandleFunc(TypeImageProcess, processor.HandleImageProcessTask)
	}

	go func() {
		if err := srv.Run(mux); err != nil {
			processor.log.Fatal().Err(err).Msg("could not run task server")
		}
	}()
	return srv
}

// --- Task handlers ---

// HandleContractExpiryScanTask refreshes the contract and notification
// snapshots, runs the expiry scan, and re-enqueues itself for the next
// interval. The scan itself is idempotent, so an occasional double run after
// a crashed re-enqueue is harmless.
func (p *TaskProcessor) HandleContractExpiryScanTask(ctx context.Context, t *asynq.Task) error {
	if err := p.controller.LoadInitial(ctx); err != nil {
		p.log.Error().Err(err).Msg("expiry scan could not refresh snapshots")
		return err
	}

	raised := p.controller.ScanExpiringContracts(ctx)
	p.log.Info().Int("raised", len(raised)).Msg("contract expiry scan finished")

	taskInfo, err := p.taskClient.EnqueueContext(ctx, t, asynq.ProcessIn(p.cfg.ExpiryScanInterval))
	if err != nil {
		p.log.Error().Err(err).Msg("failed to re-enqueue expiry scan")
		return err
	}
	p.log.Debug().Str("task_id", taskInfo.ID).Dur("in", p.cfg.ExpiryScanInterval).Msg("expiry scan re-enqueued")
	return nil
}

// HandleLeadEmailTask emails the brokerage about a new enquiry.
func (p *TaskProcessor) HandleLeadEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload LeadEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal lead email payload: %v: %w", err, asynq.SkipRetry)
	}
	if p.cfg.LeadAlertEmail == "" {
		p.log.Debug().Msg("no lead alert address configured, dropping lead email")
		return nil
	}

	subject := fmt.Sprintf("[%s] New lead: %s", p.cfg.AppName, payload.LeadName)
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("To: %s\r\n", p.cfg.LeadAlertEmail))
	sb.WriteString(fmt.Sprintf("From: %s\r\n", p.cfg.SmtpFromAddress))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(fmt.Sprintf("%s wrote:\r\n\r\n%s\r\n", payload.LeadName, payload.Message))

	if err := p.emailSender.Send(ctx, []string{p.cfg.LeadAlertEmail}, subject, []byte(sb.String())); err != nil {
		return fmt.Errorf("failed to send lead email: %w", err)
	}
	return nil
}

// HandleImageProcessTask normalizes an uploaded property photo: enforce the
// size cap, shrink oversized dimensions, re-upload, and attach the key to the
// property document.
func (p *TaskProcessor) HandleImageProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload ImageTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal image task payload: %v: %w", err, asynq.SkipRetry)
	}

	s3Client := p.storageService.Client()
	obj, err := s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.cfg.AwsS3Bucket),
		Key:    aws.String(payload.S3Key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			p.log.Warn().Str("key", payload.S3Key).Msg("uploaded object missing, dropping image task")
			return fmt.Errorf("s3 object not found: %w", asynq.SkipRetry)
		}
		return fmt.Errorf("failed to download image from S3: %w", err)
	}
	defer obj.Body.Close()

	imgData, err := io.ReadAll(obj.Body)
	if err != nil {
		return fmt.Errorf("failed to read image data: %w", err)
	}

	maxSizeBytes := int64(p.cfg.ImageMaxSizeMB) * 1024 * 1024
	if int64(len(imgData)) > maxSizeBytes {
		p.log.Warn().Str("key", payload.S3Key).Int("bytes", len(imgData)).Msg("image exceeds size cap")
		return fmt.Errorf("image exceeds max size: %w", asynq.SkipRetry)
	}

	img, _, err := image.Decode(bytes.NewReader(imgData))
	if err != nil {
		return fmt.Errorf("unsupported image format or corrupt image: %w", asynq.SkipRetry)
	}

	maxDim := uint(p.cfg.ImageMaxDimension)
	processed := imgData
	contentType := aws.ToString(obj.ContentType)
	if uint(img.Bounds().Dx()) > maxDim || uint(img.Bounds().Dy()) > maxDim {
		resized := resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
			return fmt.Errorf("failed to re-encode resized image: %w", err)
		}
		processed = buf.Bytes()
		contentType = "image/jpeg"
		if int64(len(processed)) > maxSizeBytes {
			return fmt.Errorf("resized image still exceeds max size: %w", asynq.SkipRetry)
		}
	}

	_, err = s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.cfg.AwsS3Bucket),
		Key:         aws.String(payload.S3Key),
		Body:        bytes.NewReader(processed),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload processed image: %w", err)
	}

	if err := p.propertyService.AddImageToProperty(ctx, payload.PropertyID, payload.S3Key); err != nil {
		return fmt.Errorf("failed to attach processed image to property: %w", err)
	}

	p.log.Info().Str("key", payload.S3Key).Str("property_id", payload.PropertyID).Msg("image processed")
	return nil
}
