package model

// Comment — комментарий к статье. Ответы образуют дерево через ParentID.
// Висячий ParentID при чтении трактуется как верхний уровень, не как ошибка.
type Comment struct {
	ID         string `gorm:"primaryKey" json:"id"`
	ArticleKey string `gorm:"index" json:"articleKey"`
	ParentID   string `json:"parentId,omitempty"`
	Author     string `json:"author"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"`
}

// CommentNode — узел восстановленного дерева комментариев (DFS-порядок обхода).
type CommentNode struct {
	Comment
	Replies []*CommentNode `json:"replies,omitempty"`
}
