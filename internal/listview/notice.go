package listview

type Verb string

const (
	VerbCreate Verb = "create"
	VerbUpdate Verb = "update"
	VerbDelete Verb = "delete"
)

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a dismissible toast. Code is a message catalog key.
type Notice struct {
	Level NoticeLevel `json:"level"`
	Code  string      `json:"code"`
	Err   error       `json:"-"`
}

// Notices holds the catalog keys used per verb. Empty fields fall back to
// the generic keys.
type Notices struct {
	CreateOK, CreateFailed string
	UpdateOK, UpdateFailed string
	DeleteOK, DeleteFailed string
}

func (n Notices) withDefaults() Notices {
	def := func(s *string, v string) {
		if *s == "" {
			*s = v
		}
	}
	def(&n.CreateOK, "toast.create_ok")
	def(&n.CreateFailed, "toast.create_failed")
	def(&n.UpdateOK, "toast.update_ok")
	def(&n.UpdateFailed, "toast.update_failed")
	def(&n.DeleteOK, "toast.delete_ok")
	def(&n.DeleteFailed, "toast.delete_failed")
	return n
}

func (n Notices) success(v Verb) string {
	switch v {
	case VerbUpdate:
		return n.UpdateOK
	case VerbDelete:
		return n.DeleteOK
	default:
		return n.CreateOK
	}
}

func (n Notices) failure(v Verb) string {
	switch v {
	case VerbUpdate:
		return n.UpdateFailed
	case VerbDelete:
		return n.DeleteFailed
	default:
		return n.CreateFailed
	}
}

func (vm *ViewModel[P, R, W]) setNotice(n Notice) {
	vm.mu.Lock()
	vm.notice = &n
	vm.mu.Unlock()
}

// Notice returns the last notice without clearing it.
func (vm *ViewModel[P, R, W]) Notice() (Notice, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.notice == nil {
		return Notice{}, false
	}
	return *vm.notice, true
}
