package model

// NSID коллекций удалённого репозитория: по одной именованной коллекции на
// синхронизируемый тип сущности. Layout, черновики и журнал активности
// устройства не покидают.
const (
	CollectionArticle     = "garden.wikikeeper.article"
	CollectionArchiveItem = "garden.wikikeeper.archiveItem"
	CollectionAlbum       = "garden.wikikeeper.album"
	CollectionHabit       = "garden.wikikeeper.habit"
	CollectionHabitDay    = "garden.wikikeeper.habitDay"
	CollectionComment     = "garden.wikikeeper.comment"
	CollectionBookmark    = "garden.wikikeeper.bookmark"
	CollectionPin         = "garden.wikikeeper.pin"
)

// SyncedCollections — порядок обхода коллекций при полном pull.
var SyncedCollections = []string{
	CollectionArticle,
	CollectionArchiveItem,
	CollectionAlbum,
	CollectionHabit,
	CollectionHabitDay,
	CollectionComment,
	CollectionBookmark,
	CollectionPin,
}
