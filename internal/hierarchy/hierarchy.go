// Package hierarchy 集中維護 materialized path 樹狀結構：
// branch / division / position 共用同一套 path/level 計算與循環檢查。
package hierarchy

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PathDelimiter path 欄位中祖先 id 的分隔符
const PathDelimiter = "/"

var (
	ErrParentNotFound    = errors.New("parent not found")
	ErrCircularReference = errors.New("circular reference")
)

// Node 可進入階層計算的節點能力
type Node struct {
	ID       primitive.ObjectID
	ParentID *primitive.ObjectID
	Path     string
	Level    int
}

// Lookup 依 id 取得節點；查無資料時回傳 (nil, nil)
type Lookup func(ctx context.Context, id primitive.ObjectID) (*Node, error)

// Compute 計算節點的 path 與 level。
// 無上層：path = 自身 id、level = 0；
// 有上層：path = parent.path + delimiter + 自身 id、level = parent.level + 1。
func Compute(ctx context.Context, id primitive.ObjectID, parentID *primitive.ObjectID, lookup Lookup) (string, int, error) {
	if parentID == nil || parentID.IsZero() {
		return id.Hex(), 0, nil
	}
	parent, err := lookup(ctx, *parentID)
	if err != nil {
		return "", 0, err
	}
	if parent == nil {
		return "", 0, ErrParentNotFound
	}
	return parent.Path + PathDelimiter + id.Hex(), parent.Level + 1, nil
}

// AncestorIDs 依 root → 直屬上層 的順序回傳 path 中除了自身以外的所有 id
func AncestorIDs(path string) []primitive.ObjectID {
	parts := strings.Split(path, PathDelimiter)
	if len(parts) <= 1 {
		return nil
	}
	ids := make([]primitive.ObjectID, 0, len(parts)-1)
	for _, p := range parts[:len(parts)-1] {
		id, err := primitive.ObjectIDFromHex(p)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// DescendantPrefix 子孫查詢用的字面前綴。
// 必須包含 delimiter，避免 "abc" 誤匹配到 "abcd" 這種純字串前綴。
func DescendantPrefix(path string) string {
	return path + PathDelimiter
}

// DescendantRegex 子孫查詢用的錨定 regex（id 為 hex，無需 escape）
func DescendantRegex(path string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + DescendantPrefix(path)}
}

// IsDescendantPath candidate 是否位於 path 的子樹之下（不含自身）
func IsDescendantPath(path, candidate string) bool {
	return strings.HasPrefix(candidate, DescendantPrefix(path))
}

// ValidateReparent 檢查換父節點是否會造成循環：
// 候選上層是自己、或出現在現存子孫集合中都拒絕。
// 子孫集合必須是呼叫當下重新讀取的 live 資料。
func ValidateReparent(nodeID, candidateParentID primitive.ObjectID, descendantIDs []primitive.ObjectID) error {
	if candidateParentID == nodeID {
		return ErrCircularReference
	}
	for _, id := range descendantIDs {
		if id == candidateParentID {
			return ErrCircularReference
		}
	}
	return nil
}

// Rebase 換父節點後，把子孫的 path 從舊前綴搬到新前綴。
// oldPath/newPath 是被搬移節點本身的 path。
func Rebase(descendantPath, oldPath, newPath string) string {
	return newPath + strings.TrimPrefix(descendantPath, oldPath)
}

// Level path 對應的層級（root = 0）
func Level(path string) int {
	if path == "" {
		return 0
	}
	return strings.Count(path, PathDelimiter)
}
