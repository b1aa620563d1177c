/**
 * 监控仓库层:公共查询条件
 * @author: sun977
 * @date: 2025.12.05
 * @description: 标签过滤、模糊搜索、排序字段映射等多个仓库共用的查询片段
 */
package monitor

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"neomonitor/internal/pkg/listview"
)

// likeEscape LIKE 转义字符，MySQL 与 SQLite 都支持 ESCAPE '!'
const likeEscape = " ESCAPE '!'"

var likeReplacer = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likePattern 模糊匹配模式，转义 LIKE 通配符
func likePattern(s string) string {
	return "%" + likeReplacer.Replace(s) + "%"
}

// whereLike 非 nil 时追加模糊匹配条件
func whereLike(db *gorm.DB, column string, value *string) *gorm.DB {
	if value == nil {
		return db
	}
	return db.Where(column+" LIKE ?"+likeEscape, likePattern(*value))
}

// tagConditions 生成标签过滤条件
// evalType=AND/OR: 同名标签之间 OR，不同标签之间 AND; evalType=OR: 所有条件 OR
// hostColumn 为外层查询中的主机ID列
func tagConditions(tags []listview.TagFilter, evalType int, hostColumn string) (string, []interface{}) {
	if len(tags) == 0 {
		return "", nil
	}

	var order []string
	groups := map[string][]string{}
	args := map[string][]interface{}{}
	for _, t := range tags {
		sql, a := tagCondition(t, hostColumn)
		if _, ok := groups[t.Tag]; !ok {
			order = append(order, t.Tag)
		}
		groups[t.Tag] = append(groups[t.Tag], sql)
		args[t.Tag] = append(args[t.Tag], a...)
	}

	var parts []string
	var all []interface{}
	if evalType == listview.TagEvalOr {
		for _, tag := range order {
			parts = append(parts, groups[tag]...)
			all = append(all, args[tag]...)
		}
		return "(" + strings.Join(parts, " OR ") + ")", all
	}

	for _, tag := range order {
		parts = append(parts, "("+strings.Join(groups[tag], " OR ")+")")
		all = append(all, args[tag]...)
	}
	return "(" + strings.Join(parts, " AND ") + ")", all
}

func tagCondition(t listview.TagFilter, hostColumn string) (string, []interface{}) {
	exists := fmt.Sprintf("EXISTS (SELECT 1 FROM host_tag ht WHERE ht.host_id = %s AND ht.tag = ?", hostColumn)
	notExists := "NOT " + exists

	switch t.Operator {
	case listview.TagOperatorEqual:
		return exists + " AND ht.value = ?)", []interface{}{t.Tag, t.Value}
	case listview.TagOperatorNotLike:
		return notExists + " AND ht.value LIKE ?"+likeEscape+")", []interface{}{t.Tag, likePattern(t.Value)}
	case listview.TagOperatorNotEqual:
		return notExists + " AND ht.value = ?)", []interface{}{t.Tag, t.Value}
	case listview.TagOperatorExists:
		return exists + ")", []interface{}{t.Tag}
	case listview.TagOperatorNotExists:
		return notExists + ")", []interface{}{t.Tag}
	default:
		return exists + " AND ht.value LIKE ?"+likeEscape+")", []interface{}{t.Tag, likePattern(t.Value)}
	}
}

// orderBy 排序字段映射到列名，不在映射中的字段使用默认列
func orderBy(db *gorm.DB, columns map[string]string, field, order, fallback string) *gorm.DB {
	column, ok := columns[field]
	if !ok {
		column = fallback
	}
	direction := "ASC"
	if order == listview.SortOrderDesc {
		direction = "DESC"
	}
	return db.Order(column + " " + direction).Order("id ASC")
}

// limit 大于 0 时追加 LIMIT
func limit(db *gorm.DB, n int) *gorm.DB {
	if n > 0 {
		return db.Limit(n)
	}
	return db
}

// countRow 分组计数结果
type countRow struct {
	ID    uint64
	Total int64
}

func countMap(rows []countRow) map[uint64]int64 {
	out := make(map[uint64]int64, len(rows))
	for _, r := range rows {
		out[r.ID] = r.Total
	}
	return out
}
