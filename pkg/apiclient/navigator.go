package apiclient

import (
	"context"
	"net/url"

	"go.uber.org/zap"
)

// Navigator はセッション失効時のリダイレクトやファイルダウンロードなど、
// JSONエンベロープの契約の外にある遷移を受け取る。
type Navigator interface {
	// Navigate はtargetへの遷移を要求する。targetはパス（"/"）または完全なURL。
	Navigate(ctx context.Context, target string)
}

// NavigatorFunc は関数をNavigatorとして扱うためのアダプタ。
type NavigatorFunc func(ctx context.Context, target string)

// Navigate はf(ctx, target)を呼び出す。
func (f NavigatorFunc) Navigate(ctx context.Context, target string) {
	f(ctx, target)
}

// nopNavigator は何もしないNavigator。
type nopNavigator struct{}

func (nopNavigator) Navigate(context.Context, string) {}

// Navigate はendpointとクエリからダウンロード用URLを組み立て、Navigatorに遷移を通知する。
// レスポンスがJSONではなくファイルであるエンドポイント（レポートのエクスポート等）に使う。
func (c *Client) Navigate(ctx context.Context, endpoint string, query url.Values) string {
	target := c.URL(endpoint)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	c.logger.Debug("ダウンロードURLへ遷移", zap.String("target", target))
	c.navigator.Navigate(ctx, target)
	return target
}
