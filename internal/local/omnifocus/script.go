package omnifocus

import (
	"encoding/json"
	"fmt"

	"github.com/focuskan/focuskan/internal/local"
)

// The scripts below run under osascript's JavaScript for Automation
// host. They emit JSON on stdout so the Go side stays a plain decoder.
// Full folder paths are joined with ", " and context paths with "/",
// matching the formats the field formatter and rules expect.

const listProjectsBody = `
function run() {
    var app = Application(%s);
    var doc = app.defaultDocument;

    function isoDate(d) { return d ? d.toISOString() : ""; }

    function contextPath(ctx) {
        var parts = [];
        while (ctx && ctx.id() !== undefined) {
            parts.unshift(ctx.name());
            var parent = ctx.container();
            if (parent.class() !== "context") { break; }
            ctx = parent;
        }
        return parts.join("/");
    }

    function folderPath(project) {
        var parts = [];
        var folder = project.folder();
        while (folder && folder.class() === "folder") {
            parts.unshift(folder.name());
            folder = folder.container();
        }
        return parts.join(", ");
    }

    function statusName(project) {
        if (project.completed()) { return "completed"; }
        var st = project.status();
        if (st === "on hold" || st === "on hold status") { return "on-hold"; }
        if (st === "dropped" || st === "dropped status") { return "dropped"; }
        return "active";
    }

    var out = [];
    var projects = doc.flattenedProjects();
    for (var i = 0; i < projects.length; i++) {
        var p = projects[i];
        var tasks = [];
        var children = p.rootTask().tasks();
        for (var j = 0; j < children.length; j++) {
            var t = children[j];
            tasks.push({
                id: t.id(),
                name: t.name(),
                context: t.context() ? contextPath(t.context()) : "",
                completed: t.completed(),
                dueDate: isoDate(t.dueDate()),
                startDate: isoDate(t.deferDate()),
            });
        }
        out.push({
            id: p.id(),
            name: p.name(),
            folderPath: folderPath(p),
            context: p.context() ? contextPath(p.context()) : "",
            note: p.note() || "",
            status: statusName(p),
            singleActionList: p.singletonActionHolder(),
            dueDate: isoDate(p.dueDate()),
            startDate: isoDate(p.deferDate()),
            tasks: tasks,
        });
    }
    return JSON.stringify(out);
}
`

const setProjectStatusBody = `
function run() {
    var app = Application(%s);
    var doc = app.defaultDocument;
    var project;
    try {
        project = doc.flattenedProjects.byId(%s);
        project.id();
    } catch (e) {
        return "missing";
    }
    var status = %s;
    if (status === "completed") {
        if (!project.completed()) { project.markComplete(); }
    } else if (status === "active") {
        project.status = "active status";
    } else if (status === "on-hold") {
        project.status = "on hold status";
    } else {
        project.status = "dropped status";
    }
    return "ok";
}
`

const setTaskCompletedBody = `
function run() {
    var app = Application(%s);
    var doc = app.defaultDocument;
    var task;
    try {
        task = doc.flattenedTasks.byId(%s);
        task.id();
    } catch (e) {
        return "missing";
    }
    if (!task.completed()) { app.markComplete(task); }
    return "ok";
}
`

// jsString renders s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func (s *Store) listProjectsScript() string {
	return fmt.Sprintf(listProjectsBody, jsString(s.appName))
}

func (s *Store) setProjectStatusScript(projectID string, status local.Status) string {
	return fmt.Sprintf(setProjectStatusBody,
		jsString(s.appName), jsString(projectID), jsString(status.String()))
}

func (s *Store) setTaskCompletedScript(taskID string) string {
	return fmt.Sprintf(setTaskCompletedBody, jsString(s.appName), jsString(taskID))
}
