package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/watchlaunch/internal/interest"
	"github.com/MarkoPoloResearchLab/watchlaunch/internal/model"
)

const (
	jsonKeyError  = "error"
	jsonKeyStatus = "status"
	jsonKeyNotice = "notice"
	jsonKeyReset  = "reset"

	statusValueOK = "ok"

	errorValueRateLimited   = "rate_limited"
	errorValueInvalidJSON   = "invalid_json"
	errorValueMissingFields = "missing_fields"
	errorValueSaveFailed    = "save_failed"

	defaultRateWindow           = 30 * time.Second
	defaultMaxRequestsPerWindow = 6
)

// jsonFormResult records what the submitter asked the form to do so it can be returned as JSON.
type jsonFormResult struct {
	kind   interest.NoticeKind
	notice string
	reset  bool
}

func (result *jsonFormResult) ShowNotice(kind interest.NoticeKind, message string) {
	result.kind = kind
	result.notice = message
}

func (result *jsonFormResult) ResetForm() {
	result.reset = true
}

// InterestHandlers accepts landing form submissions.
type InterestHandlers struct {
	submitter                 *interest.Submitter
	logger                    *zap.Logger
	rateWindow                time.Duration
	maxRequestsPerIPPerWindow int
	rateCountersByIP          map[string]int
	currentRateBucket         int64
	rateCountersMutex         sync.Mutex
	clock                     func() time.Time
}

func NewInterestHandlers(submitter *interest.Submitter, logger *zap.Logger) *InterestHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InterestHandlers{
		submitter:                 submitter,
		logger:                    logger,
		rateWindow:                defaultRateWindow,
		maxRequestsPerIPPerWindow: defaultMaxRequestsPerWindow,
		rateCountersByIP:          make(map[string]int),
		clock:                     time.Now,
	}
}

// CreateSubmission stores one interest record from a JSON form payload.
func (handlers *InterestHandlers) CreateSubmission(ginContext *gin.Context) {
	if handlers.isRateLimited(ginContext.ClientIP()) {
		ginContext.JSON(http.StatusTooManyRequests, gin.H{jsonKeyError: errorValueRateLimited})
		return
	}

	var fields interest.Fields
	if bindErr := ginContext.ShouldBindJSON(&fields); bindErr != nil {
		ginContext.JSON(http.StatusBadRequest, gin.H{
			jsonKeyError:  errorValueInvalidJSON,
			jsonKeyNotice: interest.FailureMessage,
			jsonKeyReset:  false,
		})
		return
	}

	result := &jsonFormResult{}
	_, submitErr := handlers.submitter.Submit(ginContext.Request.Context(), fields, result)
	if submitErr != nil {
		status := http.StatusInternalServerError
		errorValue := errorValueSaveFailed
		if errors.Is(submitErr, model.ErrMissingSubmissionField) {
			status = http.StatusBadRequest
			errorValue = errorValueMissingFields
		}
		ginContext.JSON(status, gin.H{
			jsonKeyError:  errorValue,
			jsonKeyNotice: result.notice,
			jsonKeyReset:  result.reset,
		})
		return
	}

	ginContext.JSON(http.StatusOK, gin.H{
		jsonKeyStatus: statusValueOK,
		jsonKeyNotice: result.notice,
		jsonKeyReset:  result.reset,
	})
}

func (handlers *InterestHandlers) isRateLimited(ip string) bool {
	nowBucket := handlers.clock().Unix() / int64(handlers.rateWindow.Seconds())
	key := fmt.Sprintf("%s:%d", ip, nowBucket)

	handlers.rateCountersMutex.Lock()
	defer handlers.rateCountersMutex.Unlock()

	if nowBucket != handlers.currentRateBucket {
		handlers.rateCountersByIP = make(map[string]int)
		handlers.currentRateBucket = nowBucket
	}
	handlers.rateCountersByIP[key]++
	return handlers.rateCountersByIP[key] > handlers.maxRequestsPerIPPerWindow
}
