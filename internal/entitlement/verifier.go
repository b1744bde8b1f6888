package entitlement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Verifier 对外的订阅权益源：返回已验证的有效权益，并提供购买/恢复操作
type Verifier interface {
	// CurrentEntitlements 返回当前已验证、未过期的产品 ID 列表
	CurrentEntitlements(ctx context.Context) ([]string, error)
	Purchase(ctx context.Context, productID string) (bool, error)
	Restore(ctx context.Context, productID string) (bool, error)
}

// HTTPVerifier 通过 HTTP 访问权益服务。
// 权益以 HMAC 签名的 token 下发，本地校验签名与过期时间后才算数。
type HTTPVerifier struct {
	baseURL    string
	secret     []byte
	httpClient *http.Client
	logger     *zap.Logger
}

func NewHTTPVerifier(baseURL, secret string, logger *zap.Logger) *HTTPVerifier {
	return &HTTPVerifier{
		baseURL: baseURL,
		secret:  []byte(secret),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

type entitlementsResponse struct {
	Entitlements []struct {
		ProductID string `json:"product_id"`
		Token     string `json:"token"`
	} `json:"entitlements"`
}

func (v *HTTPVerifier) CurrentEntitlements(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/entitlements", nil)
	if err != nil {
		return nil, err
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("entitlement request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("entitlement service returned %d", resp.StatusCode)
	}

	var decoded entitlementsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode entitlements: %w", err)
	}

	var products []string
	for _, e := range decoded.Entitlements {
		productID, err := v.verifyToken(e.Token)
		if err != nil {
			// 验签失败的权益直接丢弃，不影响其余条目
			v.logger.Warn("Dropping unverifiable entitlement",
				zap.String("product_id", e.ProductID),
				zap.Error(err),
			)
			continue
		}
		products = append(products, productID)
	}
	return products, nil
}

// verifyToken 校验权益 token 的签名与有效期，返回其中的产品 ID
func (v *HTTPVerifier) verifyToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", jwt.ErrTokenMalformed
	}

	productID, ok := claims["product_id"].(string)
	if !ok || productID == "" {
		return "", jwt.ErrTokenMalformed
	}
	return productID, nil
}

type purchaseRequest struct {
	ProductID string `json:"product_id"`
}

type purchaseResponse struct {
	Success  bool `json:"success"`
	Restored bool `json:"restored"`
}

func (v *HTTPVerifier) Purchase(ctx context.Context, productID string) (bool, error) {
	resp, err := v.post(ctx, "/purchase", purchaseRequest{ProductID: productID})
	if err != nil {
		return false, err
	}
	return resp.Success, nil
}

func (v *HTTPVerifier) Restore(ctx context.Context, productID string) (bool, error) {
	resp, err := v.post(ctx, "/restore", purchaseRequest{ProductID: productID})
	if err != nil {
		return false, err
	}
	return resp.Restored, nil
}

func (v *HTTPVerifier) post(ctx context.Context, path string, payload purchaseRequest) (*purchaseResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("entitlement request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("entitlement service returned %d", resp.StatusCode)
	}

	var decoded purchaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &decoded, nil
}
