// Package middleware はサンドボックスバックエンドのGinミドルウェアを提供する。
//
// バックエンドと同じHS256のJWT（user_id, role, username）を発行・検証し、
// Manager/Adminの役割で認可する。失敗時の応答は {"success": false, "error": "..."}。
package middleware
