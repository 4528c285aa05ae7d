package api

import (
	"bytes"
	"html/template"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/silverbackhw/portal-sync/internal/service"
	"github.com/silverbackhw/portal-sync/internal/zoho"
)

const callbackPath = "/api/zoho/callback"

type webhookRequest struct {
	Module    string        `json:"module"`
	Operation string        `json:"operation"`
	Data      []zoho.Record `json:"data"`
}

func (h *handler) zohoWebhook(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	message, err := h.deps.Sync.ApplyWebhook(c.Request.Context(), service.WebhookEvent{
		Module:    req.Module,
		Operation: req.Operation,
		Data:      req.Data,
	})
	if err != nil {
		log.Printf("[webhook] Failed to apply %s %s: %v", req.Module, req.Operation, err)
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

func (h *handler) redirectURL(c *gin.Context) string {
	if h.deps.RedirectURL != "" {
		return h.deps.RedirectURL
	}
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + callbackPath
}

func (h *handler) zohoAuthURL(c *gin.Context) {
	authURL, err := h.deps.Connector.AuthURL(c.Request.Context(), h.redirectURL(c))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "authUrl": authURL})
}

var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<body>
<h2>Zoho CRM connected</h2>
<p>Store this refresh token as ZOHO_REFRESH_TOKEN or save it from the admin page:</p>
<pre>{{.}}</pre>
</body>
</html>
`))

// zohoCallback completes the consent redirect and shows the refresh token once
func (h *handler) zohoCallback(c *gin.Context) {
	if errMsg := c.Query("error"); errMsg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": errMsg})
		return
	}

	refreshToken, err := h.deps.Connector.CompleteAuthorization(c.Request.Context(), c.Query("code"), h.redirectURL(c))
	if err != nil {
		respondError(c, err, nil)
		return
	}

	var page bytes.Buffer
	if err := callbackPage.Execute(&page, refreshToken); err != nil {
		respondError(c, err, nil)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page.Bytes())
}

func (h *handler) zohoRefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.deps.Connector.SaveRefreshToken(c.Request.Context(), user.ID, req.RefreshToken); err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
