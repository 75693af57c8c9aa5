package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/justsurfingit/hiring-board/internal/dtos"
)

// Stream follows the notification feed of jobID from since and calls fn for
// every event until ctx ends or the server closes the stream. It returns the
// last sequence seen so the caller can resume.
func (c *Client) Stream(ctx context.Context, jobID uint, since int64, fn func(dtos.Notification)) (int64, error) {
	q := url.Values{}
	q.Set("since", strconv.FormatInt(since, 10))
	if jobID != 0 {
		q.Set("job_id", strconv.FormatUint(uint64(jobID), 10))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/notifications/stream?"+q.Encode(), nil)
	if err != nil {
		return since, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set(RequestIDHeader, uuid.NewString())

	// the shared client's timeout would cut the stream
	stream := &http.Client{Transport: c.HTTPClient.Transport}
	resp, err := stream.Do(req)
	if err != nil {
		return since, fmt.Errorf("open stream: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return since, decodeAPIError(resp)
	}

	last := since
	err = readEvents(resp.Body, func(n dtos.Notification) {
		if n.Seq > last {
			last = n.Seq
		}
		fn(n)
	})
	if ctx.Err() != nil {
		return last, ctx.Err()
	}
	return last, err
}

// readEvents parses a text/event-stream body. Only data frames carrying a
// notification are delivered; comments and retry hints are skipped.
func readEvents(r io.Reader, fn func(dtos.Notification)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)

	var data strings.Builder
	flush := func() error {
		if data.Len() == 0 {
			return nil
		}
		var n dtos.Notification
		err := json.Unmarshal([]byte(data.String()), &n)
		data.Reset()
		if err != nil {
			return fmt.Errorf("decode event: %w", err)
		}
		fn(n)
		return nil
	}

	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if err := flush(); err != nil {
				return err
			}
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return flush()
}
