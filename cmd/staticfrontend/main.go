package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/watchlaunch/internal/httpapi"
)

const (
	launchAtLayout  = "2006-01-02T15:04:05"
	defaultLaunchAt = "2025-04-15T00:00:00"
)

type renderTarget struct {
	method     string
	path       string
	handler    gin.HandlerFunc
	outputPath string
}

func parseDotenvFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		key, rawValue, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		rawValue = strings.TrimSpace(rawValue)
		if key == "" {
			continue
		}
		rawValue = strings.Trim(rawValue, "\"'")
		values[key] = rawValue
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

func renderPage(handler gin.HandlerFunc, method string, path string) (int, []byte) {
	recorder := httptest.NewRecorder()
	context, _ := gin.CreateTestContext(recorder)
	context.Request = httptest.NewRequest(method, path, nil)
	handler(context)
	return recorder.Code, recorder.Body.Bytes()
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func valueOrDefault(values map[string]string, key string, fallback string) string {
	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}
	return fallback
}

func main() {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	var envFilePath string
	var outputDir string
	flag.StringVar(&envFilePath, "env-file", "", "optional env file providing LAUNCH_AT, TIMEZONE and BRAND_NAME")
	flag.StringVar(&outputDir, "out", "public", "directory to write static assets into")
	flag.Parse()

	envValues := map[string]string{}
	if envFilePath != "" {
		parsedValues, envErr := parseDotenvFile(envFilePath)
		if envErr != nil {
			_, _ = fmt.Fprintf(os.Stderr, "read %s: %v\n", envFilePath, envErr)
			os.Exit(1)
		}
		envValues = parsedValues
	}

	location, locationErr := time.LoadLocation(valueOrDefault(envValues, "TIMEZONE", "Local"))
	if locationErr != nil {
		_, _ = fmt.Fprintf(os.Stderr, "load timezone: %v\n", locationErr)
		os.Exit(1)
	}
	launchAt, launchErr := time.ParseInLocation(launchAtLayout, valueOrDefault(envValues, "LAUNCH_AT", defaultLaunchAt), location)
	if launchErr != nil {
		_, _ = fmt.Fprintf(os.Stderr, "parse LAUNCH_AT: %v\n", launchErr)
		os.Exit(1)
	}

	renderer := httpapi.NewPageRenderer(httpapi.PageConfig{
		BrandName: strings.TrimSpace(envValues["BRAND_NAME"]),
		LaunchAt:  launchAt,
	})
	themeSessions := httpapi.NewThemeSessions(securecookie.GenerateRandomKey(32), false, logger)
	pageHandlers := httpapi.NewPageHandlers(logger, renderer, themeSessions)

	targets := []renderTarget{
		{
			method:     http.MethodGet,
			path:       httpapi.LandingPagePath,
			handler:    pageHandlers.RenderLandingPage,
			outputPath: filepath.Join(outputDir, "launch/index.html"),
		},
		{
			method:     http.MethodGet,
			path:       httpapi.DashboardPagePath,
			handler:    pageHandlers.RenderDashboardPage,
			outputPath: filepath.Join(outputDir, "dashboard/index.html"),
		},
		{
			method:     http.MethodGet,
			path:       httpapi.LiveScriptPath,
			handler:    pageHandlers.LiveScript,
			outputPath: filepath.Join(outputDir, "assets/live.js"),
		},
	}

	for _, target := range targets {
		status, payload := renderPage(target.handler, target.method, target.path)
		if status < 200 || status >= 300 {
			_, _ = fmt.Fprintf(os.Stderr, "render %s returned %d\n", target.path, status)
			os.Exit(1)
		}
		payload = bytes.ReplaceAll(payload, []byte("\r\n"), []byte("\n"))
		if err := writeFile(target.outputPath, payload); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "write %s: %v\n", target.outputPath, err)
			os.Exit(1)
		}
	}

	fmt.Println("static frontend generated in", outputDir)
}
