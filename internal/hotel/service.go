package hotel

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nao1215/hotelops/pkg/apiclient"
)

// Service はバックエンドのリソースごとの呼び出しをまとめたもの。
type Service struct {
	// client はバックエンドとの通信に使うAPIクライアント。
	client *apiclient.Client
}

// New はclientを使うServiceを生成する。
func New(client *apiclient.Client) *Service {
	return &Service{client: client}
}

// Client は内部のAPIクライアントを返す。
func (s *Service) Client() *apiclient.Client {
	return s.client
}

func (s *Service) get(ctx context.Context, endpoint string) (apiclient.Envelope, error) {
	return s.client.Request(ctx, http.MethodGet, endpoint, nil)
}

func (s *Service) post(ctx context.Context, endpoint string, payload any) (apiclient.Envelope, error) {
	return s.client.Request(ctx, http.MethodPost, endpoint, payload)
}

func (s *Service) put(ctx context.Context, endpoint string, payload any) (apiclient.Envelope, error) {
	return s.client.Request(ctx, http.MethodPut, endpoint, payload)
}

// segment はパスの1セグメントとしてエスケープする。
func segment(v string) string {
	return url.PathEscape(v)
}

// id は数値IDをパスセグメントに変換する。
func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

// withQuery はendpointにクエリ文字列を付与する。値が空のキーは省く。
func withQuery(endpoint string, kv ...string) string {
	q := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			q.Set(kv[i], kv[i+1])
		}
	}
	if len(q) == 0 {
		return endpoint
	}
	return endpoint + "?" + q.Encode()
}
