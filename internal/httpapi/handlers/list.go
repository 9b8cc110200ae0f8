// Package handlers implements qkv-server's HTTP endpoints, in the
// request-decode/call-service/translate-error shape the teacher's
// cmd/zmux-server route closures follow.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/edirooss/qkv-server/internal/kvservice"
	"github.com/edirooss/qkv-server/internal/quicklist"
	"github.com/edirooss/qkv-server/pkg/jsonx"
)

// ListHandler serves the list-key command surface under /api/keys/:key.
type ListHandler struct {
	log *zap.Logger
	svc *kvservice.Service
}

func NewListHandler(log *zap.Logger, svc *kvservice.Service) *ListHandler {
	return &ListHandler{log: log.Named("list_handler"), svc: svc}
}

func (h *ListHandler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	if errors.Is(err, kvservice.ErrKeyNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": kvservice.ErrKeyNotFound.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
}

func bind[T any](c *gin.Context, v *T) bool {
	if err := jsonx.ParseStrictJSONBody(c.Request, v); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return false
	}
	return true
}

// RPush appends values to the tail of key.
func (h *ListHandler) RPush(c *gin.Context) {
	h.push(c, quicklist.TAIL)
}

// LPush prepends values to the head of key.
func (h *ListHandler) LPush(c *gin.Context) {
	h.push(c, quicklist.HEAD)
}

func (h *ListHandler) push(c *gin.Context, where quicklist.Where) {
	var req pushReq
	if !bind(c, &req) {
		return
	}
	values := make([][]byte, len(req.Values))
	for i, v := range req.Values {
		values[i] = []byte(v)
	}

	n, err := h.svc.Push(c.Request.Context(), c.Param("key"), where, values...)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"len": n})
}

// RPop removes and returns up to ?count= entries from the tail.
func (h *ListHandler) RPop(c *gin.Context) {
	h.pop(c, quicklist.TAIL)
}

// LPop removes and returns up to ?count= entries from the head.
func (h *ListHandler) LPop(c *gin.Context) {
	h.pop(c, quicklist.HEAD)
}

func (h *ListHandler) pop(c *gin.Context, where quicklist.Where) {
	count := 1
	if q := c.Query("count"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid count"})
			return
		}
		count = n
	}

	vals, err := h.svc.Pop(c.Request.Context(), c.Param("key"), where, count)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toDTOs(vals))
}

// LIndex returns the entry at ?idx=.
func (h *ListHandler) LIndex(c *gin.Context) {
	idx, err := strconv.Atoi(c.Query("idx"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid idx"})
		return
	}

	v, ok, err := h.svc.LIndex(c.Request.Context(), c.Param("key"), idx)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "index out of range"})
		return
	}
	c.JSON(http.StatusOK, toDTO(v))
}

// LSet overwrites the entry at ?idx=.
func (h *ListHandler) LSet(c *gin.Context) {
	idx, err := strconv.Atoi(c.Query("idx"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid idx"})
		return
	}
	var req setReq
	if !bind(c, &req) {
		return
	}

	ok, err := h.svc.LSet(c.Request.Context(), c.Param("key"), idx, []byte(req.Value))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "index out of range"})
		return
	}
	c.Status(http.StatusOK)
}

// LLen returns the key's entry count.
func (h *ListHandler) LLen(c *gin.Context) {
	n, err := h.svc.LLen(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"len": n})
}

// LRange returns entries [?start=, ?stop=] inclusive.
func (h *ListHandler) LRange(c *gin.Context) {
	start, err1 := strconv.Atoi(c.DefaultQuery("start", "0"))
	stop, err2 := strconv.Atoi(c.DefaultQuery("stop", "-1"))
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid start/stop"})
		return
	}

	vals, err := h.svc.LRange(c.Request.Context(), c.Param("key"), start, stop)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("X-Total-Count", strconv.Itoa(len(vals)))
	c.JSON(http.StatusOK, toDTOs(vals))
}

// LTrim keeps only entries [?start=, ?stop=] inclusive.
func (h *ListHandler) LTrim(c *gin.Context) {
	start, err1 := strconv.Atoi(c.DefaultQuery("start", "0"))
	stop, err2 := strconv.Atoi(c.DefaultQuery("stop", "-1"))
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid start/stop"})
		return
	}

	if err := h.svc.LTrim(c.Request.Context(), c.Param("key"), start, stop); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// LInsert splices a value before or after a pivot entry via
// ?where=before|after.
func (h *ListHandler) LInsert(c *gin.Context) {
	before := c.Query("where") != "after"
	var req insertReq
	if !bind(c, &req) {
		return
	}

	n, err := h.svc.LInsert(c.Request.Context(), c.Param("key"), before, []byte(req.Pivot), []byte(req.Value))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"len": n})
}

// LRem removes entries equal to value, per req.Count's sign (see
// kvservice.Service.LRem).
func (h *ListHandler) LRem(c *gin.Context) {
	var req remReq
	if !bind(c, &req) {
		return
	}

	n, err := h.svc.LRem(c.Request.Context(), c.Param("key"), req.Count, []byte(req.Value))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": n})
}

// Rotate moves the tail entry to the head.
func (h *ListHandler) Rotate(c *gin.Context) {
	if err := h.svc.Rotate(c.Request.Context(), c.Param("key")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Dup clones key into req.Dst.
func (h *ListHandler) Dup(c *gin.Context) {
	var req dupReq
	if !bind(c, &req) {
		return
	}

	if err := h.svc.Dup(c.Request.Context(), c.Param("key"), req.Dst); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Del removes key entirely.
func (h *ListHandler) Del(c *gin.Context) {
	if err := h.svc.Del(c.Request.Context(), c.Param("key")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}
