package workflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Protocol-Lattice/promptly/src/session"
)

// DownloadRequest is an export prepared by BeginDownloadArchive or
// BeginDownloadFile.
type DownloadRequest struct {
	seq       uint64
	action    Action
	SessionID string
	Index     int
	Name      string
}

func (r DownloadRequest) failMessage() string {
	if r.action == ActionDownloadArchive {
		return msgZipErr
	}
	return "Failed to download " + r.Name
}

func (r DownloadRequest) okMessage() string {
	if r.action == ActionDownloadArchive {
		return msgZipDone
	}
	return r.Name + " downloaded successfully!"
}

// BeginDownloadArchive prepares a server-side archive export of the session.
func (c *Controller) BeginDownloadArchive() (DownloadRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.inflight[ActionDownloadArchive]; ok {
		return DownloadRequest{}, fmt.Errorf("%s: %w", ActionDownloadArchive, ErrBusy)
	}
	sid := c.store.SessionID()
	if sid == "" {
		return DownloadRequest{}, c.fail(opDownloadZip, session.ErrNoSession)
	}
	seq, err := c.begin(ActionDownloadArchive)
	if err != nil {
		return DownloadRequest{}, err
	}
	return DownloadRequest{
		seq:       seq,
		action:    ActionDownloadArchive,
		SessionID: sid,
		Name:      session.DefaultArchiveName,
	}, nil
}

// BeginDownloadFile prepares the export of one file, addressed by its
// position in the generation response.
func (c *Controller) BeginDownloadFile(path string) (DownloadRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.inflight[ActionDownloadFile]; ok {
		return DownloadRequest{}, fmt.Errorf("%s: %w", ActionDownloadFile, ErrBusy)
	}
	sid := c.store.SessionID()
	if sid == "" {
		return DownloadRequest{}, c.fail(opDownloadFile, session.ErrNoSession)
	}
	f, ok := c.store.File(path)
	if !ok {
		return DownloadRequest{}, c.fail(opDownloadFile, session.ErrInvalidFileIndex)
	}
	seq, err := c.begin(ActionDownloadFile)
	if err != nil {
		return DownloadRequest{}, err
	}
	return DownloadRequest{
		seq:       seq,
		action:    ActionDownloadFile,
		SessionID: sid,
		Index:     f.Index,
		Name:      f.Name(),
	}, nil
}

// RunDownload fetches the blob and saves it, returning the saved path.
func (c *Controller) RunDownload(ctx context.Context, req DownloadRequest) (string, error) {
	var (
		data []byte
		err  error
	)
	if req.action == ActionDownloadArchive {
		data, err = c.svc.DownloadArchive(ctx, req.SessionID)
	} else {
		data, err = c.svc.DownloadFile(ctx, req.SessionID, req.Index)
	}
	if err != nil {
		return "", err
	}
	return c.saver.Save(req.Name, data)
}

// CompleteDownload reports the export outcome. The pipeline state is left
// alone either way.
func (c *Controller) CompleteDownload(req DownloadRequest, saved string, runErr error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.finish(req.action, req.seq); err != nil {
		return err
	}
	if runErr != nil {
		c.setStatus(StatusError, session.UserMessage(runErr, req.failMessage()))
		c.logger.Warn("download failed", zap.Stringer("action", req.action), zap.String("name", req.Name), zap.Error(runErr))
		return runErr
	}
	c.setStatus(StatusSuccess, req.okMessage())
	c.logger.Info("download saved", zap.String("path", saved))
	return nil
}

// DownloadArchive exports the whole session synchronously.
func (c *Controller) DownloadArchive(ctx context.Context) (string, error) {
	req, err := c.BeginDownloadArchive()
	if err != nil {
		return "", err
	}
	saved, err := c.RunDownload(ctx, req)
	if err := c.CompleteDownload(req, saved, err); err != nil {
		return "", err
	}
	return saved, nil
}

// DownloadFile exports one file synchronously.
func (c *Controller) DownloadFile(ctx context.Context, path string) (string, error) {
	req, err := c.BeginDownloadFile(path)
	if err != nil {
		return "", err
	}
	saved, err := c.RunDownload(ctx, req)
	if err := c.CompleteDownload(req, saved, err); err != nil {
		return "", err
	}
	return saved, nil
}

// SaveLocalArchive zips the workspace as currently edited, without asking
// the service.
func (c *Controller) SaveLocalArchive() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store.Len() == 0 {
		return "", c.fail(opLocalArchive, session.ErrNoSession)
	}
	c.status = Status{}
	data, err := c.store.ArchiveBytes()
	if err == nil {
		var saved string
		saved, err = c.saver.Save(session.DefaultArchiveName, data)
		if err == nil {
			c.setStatus(StatusSuccess, "Zip file saved to "+saved)
			return saved, nil
		}
	}
	c.setStatus(StatusError, msgArchiveErr)
	c.logger.Warn("local archive failed", zap.Error(err))
	return "", err
}

// CopyToClipboard copies the current content of path.
func (c *Controller) CopyToClipboard(path string) error {
	err := c.editor.CopyToClipboard(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.setStatus(StatusError, msgCopyErr)
		c.logger.Warn("copy failed", zap.String("op", opCopyClipboard), zap.Error(err))
		return err
	}
	c.setStatus(StatusSuccess, msgCopied)
	return nil
}
