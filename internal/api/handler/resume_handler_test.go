package handler_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-ingest-go/internal/api/handler"
	"resume-ingest-go/internal/logger"
	"resume-ingest-go/internal/processor"
)

const handlerTestResume = `Priya Patel
Seattle, WA
priya@example.com

Experience
Data Scientist at Initech (2019 - 2024)

Education
M.S. Statistics

Skills
Python, Machine learning, Communication`

type errorBody struct {
	Error    string   `json:"error"`
	Warnings []string `json:"warnings"`
}

func newTestEngine(t *testing.T, opts ...processor.SettingOpt) *server.Hertz {
	t.Helper()
	base := []processor.SettingOpt{
		processor.WithLogger(logger.Nop()),
		processor.WithReferenceYear(2025),
	}
	p := processor.CreateProcessor(nil, append(base, opts...))
	rh := handler.NewResumeHandler(p)

	h := server.New(server.WithHostPorts("127.0.0.1:0"))
	api := h.Group("/api/v1")
	api.GET("/health", rh.HandleHealth)
	api.POST("/resume/parse", rh.HandleResumeParse)
	api.POST("/documents/extract", rh.HandleDocumentExtract)
	api.POST("/linkedin/parse", rh.HandleLinkedInParse)
	return h
}

func postJSON(h *server.Hertz, path string, payload interface{}) *ut.ResponseRecorder {
	raw, _ := json.Marshal(payload)
	return ut.PerformRequest(h.Engine, "POST", path,
		&ut.Body{Body: bytes.NewReader(raw), Len: len(raw)},
		ut.Header{Key: "Content-Type", Value: "application/json"},
	)
}

// createMultipartFormWithContent 构造带单个文件字段的 multipart 表单
func createMultipartFormWithContent(t *testing.T, fileName string, fileContent []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(fileContent)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func postMultipart(h *server.Hertz, path string, body *bytes.Buffer, contentType string) *ut.ResponseRecorder {
	return ut.PerformRequest(h.Engine, "POST", path,
		&ut.Body{Body: body, Len: body.Len()},
		ut.Header{Key: "Content-Type", Value: contentType},
	)
}

func TestHandleResumeParse_JSONText(t *testing.T) {
	h := newTestEngine(t)

	resp := postJSON(h, "/api/v1/resume/parse", map[string]string{"text": handlerTestResume})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var res processor.ResumeResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &res))
	assert.NotEmpty(t, res.DocumentID)
	assert.Equal(t, "text", res.Source)
	assert.Equal(t, "Priya Patel", res.Profile.Name)
	assert.Equal(t, "Seattle, WA", res.Profile.Location)
	assert.Equal(t, "6", res.Profile.YearsExperience)
	assert.NotEmpty(t, res.Skills)
	assert.NotNil(t, res.Sections)
}

func TestHandleResumeParse_JSONFile(t *testing.T) {
	h := newTestEngine(t)

	pdf := []byte("%PDF-1.4\nBT (Priya Patel) Tj ET")
	resp := postJSON(h, "/api/v1/resume/parse", map[string]interface{}{
		"file": map[string]string{
			"name":     "cv.pdf",
			"mimeType": "application/pdf",
			"data":     base64.StdEncoding.EncodeToString(pdf),
		},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var res processor.ResumeResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &res))
	assert.Equal(t, "file", res.Source)
	assert.Equal(t, "pdf", string(res.Format))
	assert.Equal(t, "Priya Patel", res.Profile.Name)
}

func TestHandleResumeParse_Multipart(t *testing.T) {
	h := newTestEngine(t)

	body, ct := createMultipartFormWithContent(t, "cv.txt", []byte(handlerTestResume), nil)
	resp := postMultipart(h, "/api/v1/resume/parse", body, ct)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var res processor.ResumeResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &res))
	assert.Equal(t, "Priya Patel", res.Profile.Name)
}

func TestHandleResumeParse_Errors(t *testing.T) {
	h := newTestEngine(t, processor.WithMaxFileSize(64))

	t.Run("没有输入返回400", func(t *testing.T) {
		resp := postJSON(h, "/api/v1/resume/parse", map[string]string{"text": "  "})
		require.Equal(t, http.StatusBadRequest, resp.Code)

		var body errorBody
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, processor.WarnNoInput, body.Error)
		assert.Equal(t, []string{processor.WarnNoInput}, body.Warnings)
	})

	t.Run("空请求体返回400", func(t *testing.T) {
		resp := ut.PerformRequest(h.Engine, "POST", "/api/v1/resume/parse", nil)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("非法JSON返回400", func(t *testing.T) {
		raw := []byte("{not json")
		resp := ut.PerformRequest(h.Engine, "POST", "/api/v1/resume/parse",
			&ut.Body{Body: bytes.NewReader(raw), Len: len(raw)},
			ut.Header{Key: "Content-Type", Value: "application/json"},
		)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("非法base64返回400", func(t *testing.T) {
		resp := postJSON(h, "/api/v1/resume/parse", map[string]interface{}{
			"file": map[string]string{"name": "cv.pdf", "data": "%%%"},
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("不支持的格式返回415", func(t *testing.T) {
		body, ct := createMultipartFormWithContent(t, "photo.png", []byte{0x89, 'P', 'N', 'G'}, nil)
		resp := postMultipart(h, "/api/v1/resume/parse", body, ct)
		require.Equal(t, http.StatusUnsupportedMediaType, resp.Code)

		var eb errorBody
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &eb))
		assert.Equal(t, []string{processor.WarnUnsupportedFile}, eb.Warnings)
	})

	t.Run("文件过大返回413", func(t *testing.T) {
		body, ct := createMultipartFormWithContent(t, "cv.txt", bytes.Repeat([]byte("a"), 65), nil)
		resp := postMultipart(h, "/api/v1/resume/parse", body, ct)
		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
	})
}

func TestHandleDocumentExtract(t *testing.T) {
	h := newTestEngine(t)

	body, ct := createMultipartFormWithContent(t, "cv.pdf", []byte("%PDF-1.4 BT (Hello World) Tj ET"), nil)
	resp := postMultipart(h, "/api/v1/documents/extract", body, ct)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var res processor.ExtractResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &res))
	assert.Equal(t, "Hello World", res.Text)
	assert.Equal(t, "pdf", string(res.Format))

	resp = postJSON(h, "/api/v1/documents/extract", map[string]string{"text": "only text"})
	assert.Equal(t, http.StatusBadRequest, resp.Code, "没有文件时应返回400")
}

func TestHandleLinkedInParse(t *testing.T) {
	h := newTestEngine(t)
	csvText := "First Name,Last Name,Email Address,Company\nGrace,Hopper,grace@navy.mil,\"US Navy, Reserve\"\n"

	t.Run("JSON文本", func(t *testing.T) {
		resp := postJSON(h, "/api/v1/linkedin/parse", map[string]string{"text": csvText})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		var res processor.LinkedInResult
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &res))
		require.Len(t, res.Connections, 1)
		assert.Equal(t, "US Navy, Reserve", res.Connections[0].Company)
		assert.Equal(t, "grace@navy.mil", res.Connections[0].Email)
	})

	t.Run("multipart文件", func(t *testing.T) {
		body, ct := createMultipartFormWithContent(t, "Connections.csv", []byte(csvText), nil)
		resp := postMultipart(h, "/api/v1/linkedin/parse", body, ct)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		var res processor.LinkedInResult
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &res))
		assert.Len(t, res.Connections, 1)
	})

	t.Run("空文本返回提示", func(t *testing.T) {
		resp := postJSON(h, "/api/v1/linkedin/parse", map[string]string{"text": ""})
		require.Equal(t, http.StatusOK, resp.Code)

		var res processor.LinkedInResult
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &res))
		assert.Empty(t, res.Connections)
		assert.Equal(t, []string{processor.WarnEmptyLinkedIn}, res.Warnings)
	})
}

func TestHandleHealth(t *testing.T) {
	h := newTestEngine(t)

	resp := ut.PerformRequest(h.Engine, "GET", "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "infer", body["skill_policy"])
}
