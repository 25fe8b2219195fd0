package media

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"partner-media-backend/internal/logging"
	"partner-media-backend/internal/models"
)

type TaskState string

const (
	TaskPending   TaskState = "pending"
	TaskUploading TaskState = "uploading"
	TaskSuccess   TaskState = "success"
	TaskError     TaskState = "error"
)

const (
	// Progress share of the main file when a thumbnail follows it.
	mainProgressWeight = 0.8

	// How long a finished task stays visible before it is removed.
	successLinger = 2 * time.Second
)

// Asset is one piece of media queued for upload. Images arrive as raw
// bytes and are re-encoded; videos are validated and sent as-is with an
// optional caller-supplied poster thumbnail.
type Asset struct {
	Name     string
	Kind     models.MediaKind
	Data     []byte
	Thumb    []byte
	Ext      string
	Mime     string
	Duration time.Duration
}

// Task is the observable state of one asset moving through the pipeline.
type Task struct {
	ID       string
	Name     string
	Kind     models.MediaKind
	State    TaskState
	Progress float64
	Err      error
	Item     *models.MediaItem

	cancel context.CancelFunc
}

// QuotaCounter reports current usage against the media limit.
type QuotaCounter interface {
	Quota(girlID uuid.UUID) (count, max int, err error)
}

// Uploader runs upload batches sequentially and tracks per-asset tasks.
// One asset failing or being cancelled never touches the others.
type Uploader struct {
	ef      *EdgeClient
	gallery QuotaCounter
	log     logging.Logger

	// onSettled fires after any task reaches a terminal state, so the
	// gallery view can refetch.
	onSettled func()

	mu    sync.Mutex
	tasks []*Task

	removeAfter func(d time.Duration, fn func())
}

func NewUploader(ef *EdgeClient, gallery QuotaCounter, log logging.Logger) *Uploader {
	return &Uploader{
		ef:      ef,
		gallery: gallery,
		log:     log,
		removeAfter: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
	}
}

// OnSettled registers the refetch callback.
func (u *Uploader) OnSettled(fn func()) { u.onSettled = fn }

// Tasks returns a snapshot of the current task list.
func (u *Uploader) Tasks() []Task {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]Task, len(u.tasks))
	for i, t := range u.tasks {
		out[i] = *t
	}
	return out
}

// Cancel aborts a task's in-flight transfer.
func (u *Uploader) Cancel(taskID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, t := range u.tasks {
		if t.ID == taskID && t.cancel != nil {
			t.cancel()
			return
		}
	}
}

// Dismiss removes a failed task from the list.
func (u *Uploader) Dismiss(taskID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i, t := range u.tasks {
		if t.ID == taskID && t.State == TaskError {
			u.tasks = append(u.tasks[:i], u.tasks[i+1:]...)
			return
		}
	}
}

// UploadBatch uploads the assets one at a time. An advisory quota check
// runs first; the backend remains the enforcer. The returned error covers
// batch-level failures only, per-asset outcomes live on the tasks.
func (u *Uploader) UploadBatch(ctx context.Context, girlID uuid.UUID, assets []Asset) error {
	if len(assets) == 0 {
		return nil
	}

	if count, max, err := u.gallery.Quota(girlID); err == nil {
		if count+len(assets) > max {
			return fmt.Errorf("%w: %d of %d used", ErrQuotaExceeded, count, max)
		}
	} else {
		u.log.Debug(ctx, "quota preflight failed, deferring to backend", "error", err)
	}

	tasks := make([]*Task, len(assets))
	u.mu.Lock()
	for i, a := range assets {
		tasks[i] = &Task{
			ID:    uuid.New().String(),
			Name:  a.Name,
			Kind:  a.Kind,
			State: TaskPending,
		}
		u.tasks = append(u.tasks, tasks[i])
	}
	u.mu.Unlock()

	for i, a := range assets {
		u.runTask(ctx, girlID, tasks[i], a)
	}
	return nil
}

func (u *Uploader) runTask(parent context.Context, girlID uuid.UUID, task *Task, asset Asset) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	u.mu.Lock()
	task.cancel = cancel
	task.State = TaskUploading
	u.mu.Unlock()

	item, err := u.upload(ctx, girlID, task, asset)

	u.mu.Lock()
	task.cancel = nil
	if err != nil {
		task.State = TaskError
		task.Err = err
		u.mu.Unlock()
		u.log.Warn(ctx, "upload failed", "asset", asset.Name, "error", err)
	} else {
		task.State = TaskSuccess
		task.Progress = 1
		task.Item = item
		u.mu.Unlock()
		u.removeAfter(successLinger, func() { u.remove(task.ID) })
	}

	if u.onSettled != nil {
		u.onSettled()
	}
}

func (u *Uploader) upload(ctx context.Context, girlID uuid.UUID, task *Task, asset Asset) (*models.MediaItem, error) {
	main := asset.Data
	thumb := asset.Thumb
	ext := asset.Ext
	mime := asset.Mime
	meta := models.MediaMeta{Size: int64(len(main)), Mime: mime}

	switch asset.Kind {
	case models.KindImage:
		prepared, err := PrepareImage(asset.Data)
		if err != nil {
			return nil, err
		}
		main = prepared.Main
		thumb = prepared.Thumb
		ext = "jpg"
		mime = prepared.Mime
		meta = models.MediaMeta{
			Mime:   prepared.Mime,
			Size:   int64(len(prepared.Main)),
			Width:  prepared.Width,
			Height: prepared.Height,
		}
	case models.KindVideo, models.KindLivePhoto:
		if err := ValidateVideo(int64(len(main)), asset.Duration); err != nil {
			return nil, err
		}
		meta.Duration = int(asset.Duration.Seconds())
	default:
		return nil, ErrUnsupported
	}

	grant, err := u.ef.GetUploadURL(ctx, models.GetUploadURLRequest{
		GirlID:   girlID,
		Kind:     asset.Kind,
		Ext:      ext,
		HasThumb: len(thumb) > 0,
		Meta:     meta,
	})
	if err != nil {
		return nil, err
	}

	mainWeight := 1.0
	if len(thumb) > 0 {
		mainWeight = mainProgressWeight
	}

	// Transfer failures are terminal for the task; the user re-picks and
	// re-uploads rather than the client retrying a half-sent body.
	err = u.ef.UploadToSignedURL(ctx, grant.PutURLMain, mime, main, func(sent, total int64) {
		u.setProgress(task, mainWeight*float64(sent)/float64(total))
	})
	if err != nil {
		return nil, err
	}

	if len(thumb) > 0 {
		err = u.ef.UploadToSignedURL(ctx, grant.PutURLThumb, "image/jpeg", thumb, func(sent, total int64) {
			u.setProgress(task, mainWeight+(1-mainWeight)*float64(sent)/float64(total))
		})
		if err != nil {
			return nil, err
		}
	}

	return &grant.RecordDraft, nil
}

func (u *Uploader) setProgress(task *Task, p float64) {
	u.mu.Lock()
	if p > task.Progress {
		task.Progress = p
	}
	u.mu.Unlock()
}

func (u *Uploader) remove(taskID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i, t := range u.tasks {
		if t.ID == taskID {
			u.tasks = append(u.tasks[:i], u.tasks[i+1:]...)
			return
		}
	}
}
