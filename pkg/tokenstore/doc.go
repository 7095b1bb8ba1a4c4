// Package tokenstore はセッショントークンの永続ストアを提供する。
//
// ブラウザのlocalStorageに相当するクライアント側の永続領域で、キーは1つ（authToken）のみ扱う。
// 実装としてメモリ、JSONファイル、SQLite、Redisを用意する。
// このストアを直接読み書きしてよいのはapiclient.Clientのみである。
package tokenstore
