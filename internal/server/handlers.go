// ABOUTME: HTTP handlers for the audio API
// ABOUTME: Asset metadata, playback, languages and health endpoints
package server

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hippolingua/hippolingua/internal/extract"
	"github.com/hippolingua/hippolingua/internal/language"
	"github.com/hippolingua/hippolingua/internal/version"
	"github.com/hippolingua/hippolingua/pkg/audio"
)

// playSuffix selects playback on the asset catch-all route
const playSuffix = "/play"

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), timeout(s.config.RequestTimeout))

	r.GET("/", s.handleIndex)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/languages", s.handleLanguages)
	// asset ids may contain slashes, so a catch-all carries both routes
	api.GET("/audio/*path", s.handleAudio)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
	})
	return r
}

func (s *Server) handleIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        s.config.Name,
		"product":     version.Product,
		"version":     version.Version,
		"description": version.Description,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": version.Version,
	})
}

func (s *Server) handleLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"languages": language.All()})
}

func (s *Server) handleAudio(c *gin.Context) {
	p := strings.TrimPrefix(c.Param("path"), "/")

	if id, ok := strings.CutSuffix(p, playSuffix); ok && id != "" {
		c.Set(routeKey, "/api/audio/:file_id/play")
		s.handlePlay(c, id)
		return
	}

	c.Set(routeKey, "/api/audio/:file_id")
	if p == "" {
		writeError(c, http.StatusNotFound, "Audio file id is required")
		return
	}
	s.handleMetadata(c, p)
}

func (s *Server) handleMetadata(c *gin.Context, id string) {
	asset, err := s.source.Stat(c.Request.Context(), id)
	if err != nil {
		writeExtractError(c, id, err)
		return
	}

	body := gin.H{}
	for k, v := range asset.Metadata {
		body[k] = v
	}
	body["id"] = asset.ID
	body["name"] = asset.Key
	body["size"] = asset.Size
	body["content_type"] = asset.ContentType
	body["format"] = asset.Format
	body["url"] = asset.URL
	body["language"] = asset.Language
	body["updated"] = ""
	if !asset.LastModified.IsZero() {
		body["updated"] = asset.LastModified.UTC().Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, body)
}

func (s *Server) handlePlay(c *gin.Context, id string) {
	req, err := parsePlayQuery(c, id)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.extractor.Extract(c.Request.Context(), req)
	if err != nil {
		writeExtractError(c, id, err)
		return
	}

	c.Header("Content-Disposition", contentDisposition(res.Filename))
	c.Header("X-Audio-Origin", string(res.Origin))
	c.Header("X-Audio-Duration", strconv.FormatFloat(res.Duration.Seconds(), 'f', 3, 64))
	c.Data(http.StatusOK, res.ContentType, res.Data)
}

// parsePlayQuery reads start_time, end_time, speed, repeat and format
func parsePlayQuery(c *gin.Context, id string) (extract.Request, error) {
	req := extract.Request{AssetID: id, Speed: 1.0}

	if v, ok := c.GetQuery("start_time"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, fmt.Errorf("invalid start_time %q", v)
		}
		req.Start = f
	}
	if v, ok := c.GetQuery("end_time"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, fmt.Errorf("invalid end_time %q", v)
		}
		req.End = &f
	}
	if v, ok := c.GetQuery("speed"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, fmt.Errorf("invalid speed %q", v)
		}
		req.Speed = f
	}
	if v, ok := c.GetQuery("repeat"); ok && v != "" {
		b, err := parseBool(v)
		if err != nil {
			return req, fmt.Errorf("invalid repeat %q", v)
		}
		req.Repeat = b
	}
	if v, ok := c.GetQuery("format"); ok && v != "" {
		req.Format = audio.Container(strings.ToLower(v))
	}
	return req, nil
}

// parseBool accepts the usual query-string spellings of a boolean
func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return strconv.ParseBool(v)
}

func contentDisposition(filename string) string {
	if cd := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); cd != "" {
		return cd
	}
	return "attachment"
}

// statusFor maps an error kind to an HTTP status
func statusFor(err error) int {
	switch extract.Kind(err) {
	case extract.KindNotFound:
		return http.StatusNotFound
	case extract.KindInvalidParameter:
		return http.StatusBadRequest
	case extract.KindUnavailable:
		return http.StatusServiceUnavailable
	case extract.KindTimeout:
		return http.StatusGatewayTimeout
	case extract.KindCanceled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeExtractError(c *gin.Context, id string, err error) {
	status := statusFor(err)
	detail := err.Error()
	if status == http.StatusNotFound {
		detail = "Audio file not found: " + id
	}
	writeError(c, status, detail)
}

func writeError(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}
