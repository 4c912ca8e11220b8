package session

import (
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/vburojevic/cfdbg/internal/domain"
	"github.com/vburojevic/cfdbg/internal/transport"
)

// StackTrace fetches the call stack and passes frames
// [startFrame, startFrame+frameCount) to fn. Frames with mistyped fields are
// dropped before indexing. Frames are never cached.
func (c *Controller) StackTrace(startFrame, frameCount int, fn func([]domain.StackFrame)) {
	c.loop.post(func() {
		c.request(transport.PathStackTrace, func(res gjson.Result, err error) {
			if err != nil {
				c.logger.Debug("stack trace fetch failed", zap.Error(err))
				return
			}
			fn(page(parseFrames(res), startFrame, frameCount))
		})
	})
}

// Source fetches the text of uri. fn is only called when the server returns
// string content.
func (c *Controller) Source(uri string, fn func(content string)) {
	c.loop.post(func() {
		c.request(transport.SourceContentPath(uri), func(res gjson.Result, err error) {
			if err != nil {
				c.logger.Debug("source fetch failed", zap.String("uri", uri), zap.Error(err))
				return
			}
			content := res.Get("content")
			if content.Type != gjson.String {
				return
			}
			fn(content.Str)
		})
	})
}

func parseFrames(res gjson.Result) []domain.StackFrame {
	frames := []domain.StackFrame{}
	if !res.IsArray() {
		return frames
	}
	for _, f := range res.Array() {
		name := f.Get("name")
		sourceURI := f.Get("sourceUri")
		sourceNumber := f.Get("sourceNumber")
		line := f.Get("line")
		column := f.Get("column")
		if name.Type != gjson.String ||
			sourceURI.Type != gjson.String ||
			sourceNumber.Type != gjson.Number ||
			line.Type != gjson.Number ||
			column.Type != gjson.Number {
			continue
		}
		frames = append(frames, domain.StackFrame{
			Index:        len(frames),
			Name:         name.Str,
			SourceURI:    sourceURI.Str,
			SourceNumber: int(sourceNumber.Int()),
			Line:         int(line.Int()),
			Column:       int(column.Int()),
		})
	}
	return frames
}
