// Package apiclient はホテル運用バックエンドと通信するAPI Gatewayクライアントを提供する。
//
// すべての利用者（CLI、統合テスト等）はこのクライアント経由でバックエンドを呼び出す。
// セッショントークンのライフサイクル（メモリキャッシュと永続ストアの同期）と、
// 成功/失敗レスポンスの統一的な扱いを一箇所に集約する。
//
// 401応答を受け取った場合はトークンを破棄し、Navigatorにリダイレクト先を通知する。
// 画面遷移そのものは呼び出し側の責務である。
package apiclient
