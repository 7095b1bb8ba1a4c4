// Package hotel はホテル運用バックエンドの各リソースに対する呼び出しを提供する。
//
// 各メソッドはapiclient.Client.Requestに固定のエンドポイント、メソッド、ペイロードを渡す
// だけの薄いラッパーであり、レスポンスは検証せずにEnvelopeのまま返す。
// 売上集計やレポート計算などの業務ルールはバックエンドの責務である。
package hotel
