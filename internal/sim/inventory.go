package sim

import (
	"github.com/dragonfell/server/internal/core/event"
	"github.com/dragonfell/server/internal/data"
)

// Affix 是裝備上的一條附魔屬性。
type Affix struct {
	Stat      data.AffixStat
	Prefix    string
	Magnitude float64
}

// InventoryItem 是一個物品實例：材料為可堆疊的堆，裝備為獨立實例。
// EquippedBy 只是弱引用（騎士 ID），物品所有權始終屬於 Inventory。
type InventoryItem struct {
	InstanceID int
	BaseItemID string
	Name       string
	Kind       data.ItemKind
	Slot       data.EquipSlot
	Quantity   int
	Quality    data.Quality // 裝備限定，材料為空
	Rarity     data.Rarity
	Affixes    []Affix
	Value      float64
	EquippedBy int // 0 = 未裝備
}

// Clone 回傳深複本。
func (it *InventoryItem) Clone() *InventoryItem {
	cp := *it
	cp.Affixes = append([]Affix(nil), it.Affixes...)
	return &cp
}

// stackable 判斷兩個物品能否合併：同基底素材且皆無品質/附魔。
func (it *InventoryItem) stackableWith(other *InventoryItem) bool {
	return it.Kind == data.KindMaterial && other.Kind == data.KindMaterial &&
		it.BaseItemID == other.BaseItemID &&
		it.Quality == "" && other.Quality == "" &&
		len(it.Affixes) == 0 && len(other.Affixes) == 0
}

// MaterialRequirement 是一筆材料需求。
type MaterialRequirement struct {
	BaseItemID string
	Quantity   int
}

// Inventory 管理所有物品實例。實例 ID 為單調遞增計數器。
type Inventory struct {
	bus    *event.Bus
	items  []*InventoryItem
	nextID int
}

func NewInventory(bus *event.Bus) *Inventory {
	return &Inventory{bus: bus, nextID: 1}
}

// AddItem 加入物品：可堆疊素材併入既有堆，否則附加為新實例。
// 回傳實際儲存的（可能已合併的）物品。
func (inv *Inventory) AddItem(item *InventoryItem) *InventoryItem {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	if item.Kind == data.KindMaterial {
		for _, existing := range inv.items {
			if existing.stackableWith(item) {
				existing.Quantity += item.Quantity
				inv.emit()
				return existing
			}
		}
	}
	stored := item.Clone()
	if stored.InstanceID <= 0 || stored.InstanceID < inv.nextID {
		stored.InstanceID = inv.nextID
	}
	if stored.InstanceID >= inv.nextID {
		inv.nextID = stored.InstanceID + 1
	}
	inv.items = append(inv.items, stored)
	inv.emit()
	return stored
}

// Get 回傳指定實例，找不到為 nil。回傳為內部指標，僅限管理器互相呼叫，
// 跨越持久化邊界時必須 Clone。
func (inv *Inventory) Get(instanceID int) *InventoryItem {
	for _, it := range inv.items {
		if it.InstanceID == instanceID {
			return it
		}
	}
	return nil
}

// Items 回傳所有物品的深複本。
func (inv *Inventory) Items() []*InventoryItem {
	out := make([]*InventoryItem, len(inv.items))
	for i, it := range inv.items {
		out[i] = it.Clone()
	}
	return out
}

// Count 回傳堆數（非總數量）。
func (inv *Inventory) Count() int {
	return len(inv.items)
}

// NextInstanceID 回傳下一個將被分配的實例 ID（存檔用）。
func (inv *Inventory) NextInstanceID() int {
	return inv.nextID
}

// CountByBase 計算指定基底素材的未裝備總量（跨所有堆）。
func (inv *Inventory) CountByBase(baseItemID string) int {
	total := 0
	for _, it := range inv.items {
		if it.BaseItemID == baseItemID && it.Kind == data.KindMaterial {
			total += it.Quantity
		}
	}
	return total
}

// ConsumeMaterials 以全有或全無的方式扣除材料：
// 先彙總每個基底的需求並驗證跨堆總量足夠，任何一項不足即回傳 false
// 且不動任何堆；驗證通過後由前往後扣減/移除。
func (inv *Inventory) ConsumeMaterials(reqs []MaterialRequirement) bool {
	need := make(map[string]int, len(reqs))
	for _, r := range reqs {
		if r.Quantity <= 0 {
			continue
		}
		need[r.BaseItemID] += r.Quantity
	}
	for base, qty := range need {
		if inv.CountByBase(base) < qty {
			return false
		}
	}
	for base, qty := range need {
		remaining := qty
		for i := 0; i < len(inv.items) && remaining > 0; {
			it := inv.items[i]
			if it.BaseItemID != base || it.Kind != data.KindMaterial {
				i++
				continue
			}
			take := remaining
			if take > it.Quantity {
				take = it.Quantity
			}
			it.Quantity -= take
			remaining -= take
			if it.Quantity <= 0 {
				inv.items = append(inv.items[:i], inv.items[i+1:]...)
				continue // 同一索引現在是下一個元素
			}
			i++
		}
	}
	inv.emit()
	return true
}

// Remove 刪除一個實例（解雇騎士不觸發此路徑，裝備留在庫存）。
func (inv *Inventory) Remove(instanceID int) bool {
	for i, it := range inv.items {
		if it.InstanceID == instanceID {
			inv.items = append(inv.items[:i], inv.items[i+1:]...)
			inv.emit()
			return true
		}
	}
	return false
}

// AssignToKnight 設定弱引用 EquippedBy。物品所有權不變。
func (inv *Inventory) AssignToKnight(instanceID, knightID int) bool {
	it := inv.Get(instanceID)
	if it == nil {
		return false
	}
	it.EquippedBy = knightID
	inv.emit()
	return true
}

// ReassignToKnight 以單一異動完成同槽換裝：釋放舊物品的裝備引用並
// 指派新物品，整體僅發出一次快照。prev 為零時等同單純指派。
func (inv *Inventory) ReassignToKnight(prevInstanceID, instanceID, knightID int) bool {
	it := inv.Get(instanceID)
	if it == nil {
		return false
	}
	if prevInstanceID != 0 && prevInstanceID != instanceID {
		if prev := inv.Get(prevInstanceID); prev != nil {
			prev.EquippedBy = 0
		}
	}
	it.EquippedBy = knightID
	inv.emit()
	return true
}

// ClearAssignment 清除單一物品的裝備引用。
func (inv *Inventory) ClearAssignment(instanceID int) {
	if it := inv.Get(instanceID); it != nil {
		it.EquippedBy = 0
		inv.emit()
	}
}

// ClearAssignmentsForKnight 清除某騎士的所有裝備引用（解雇時呼叫）。
func (inv *Inventory) ClearAssignmentsForKnight(knightID int) {
	changed := false
	for _, it := range inv.items {
		if it.EquippedBy == knightID {
			it.EquippedBy = 0
			changed = true
		}
	}
	if changed {
		inv.emit()
	}
}

// Restore 以存檔內容重建庫存（持久化邊界，深複製輸入）。
func (inv *Inventory) Restore(items []*InventoryItem, nextID int) {
	inv.items = make([]*InventoryItem, len(items))
	for i, it := range items {
		inv.items[i] = it.Clone()
	}
	if nextID < 1 {
		nextID = 1
	}
	inv.nextID = nextID
	inv.emit()
}

func (inv *Inventory) emit() {
	if inv.bus != nil {
		event.Emit(inv.bus, event.InventoryChanged{StackCount: len(inv.items)})
	}
}
