// Package sandbox はホテル運営バックエンドのHTTP契約を再現する開発用サーバーを提供する。
//
// 認証（HS256のJWT）、役割による認可、売上・客室・従業員・ダッシュボード・レポートの
// 各エンドポイントとレポートのExcelダウンロードを、SQLiteに保存したデータで応答する。
// CLIやAPIクライアントの結合テストの相手として使う。
package sandbox
