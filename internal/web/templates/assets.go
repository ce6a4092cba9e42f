package templates

const pageCSS = `
body{font-family:system-ui,sans-serif;margin:0;color:#1f2933;background:#f5f7fa}
header{background:#243b53;color:#fff;padding:0.75rem 1.5rem}
header h1{font-size:1.25rem;margin:0}
main{padding:1.5rem;max-width:1200px;margin:0 auto}
.dropzone{border:2px dashed #9fb3c8;border-radius:8px;padding:2rem;text-align:center;background:#fff}
.dropzone.over{border-color:#2186eb;background:#e6f6ff}
.button{display:inline-block;padding:0.4rem 0.9rem;border-radius:4px;border:none;background:#2186eb;color:#fff;cursor:pointer;text-decoration:none;font-size:0.9rem}
.button.secondary{background:#829ab1}
.toolbar{display:flex;gap:0.75rem;align-items:center;margin:1rem 0}
.file-name{font-weight:600}
.alert{position:relative;background:#ffe3e3;border:1px solid #e66a6a;border-radius:4px;padding:0.75rem 2rem 0.75rem 1rem;margin:1rem 0}
.alert p{margin:0.25rem 0}
.alert .close{position:absolute;top:0.25rem;right:0.5rem;border:none;background:none;font-size:1.25rem;cursor:pointer}
.tree{list-style:none;padding-left:1rem;margin:0.25rem 0}
.tree .key{color:#486581}
.tree .count{color:#829ab1;font-size:0.8rem}
table{border-collapse:collapse;width:100%;background:#fff;font-size:0.85rem}
th,td{border:1px solid #d9e2ec;padding:0.3rem 0.5rem;text-align:left;white-space:nowrap}
th a{color:inherit;text-decoration:none}
tbody tr:nth-child(even){background:#f0f4f8}
.records{overflow-x:auto}
.empty{color:#829ab1}
`

// pageJS wires the drop zone, file picker, sort links, reset and alert
// dismissal. Responses are HTML fragments swapped into #viewer; a response
// for an older load than the latest one started is ignored.
const pageJS = `
(function(){
  var viewer=document.getElementById('viewer');
  var zone=document.getElementById('dropzone');
  var input=document.getElementById('file-input');
  var maxSize=parseInt(zone.dataset.maxSize||'0',10);
  var seq=0;
  function swap(p,n){return p.then(function(r){return r.text();}).then(function(html){if(n===seq){viewer.innerHTML=html;}});}
  function send(url,opts){var n=++seq;opts=opts||{};opts.headers={'HX-Request':'true'};return swap(fetch(url,opts),n);}
  function load(file){
    if(!file){return;}
    if(maxSize>0&&file.size>maxSize){viewer.insertAdjacentHTML('afterbegin','<div class="alert" role="alert"><button type="button" class="close" data-dismiss>&times;</button><strong>File exceeds the maximum size limit</strong><small>Code: FILE001</small></div>');return;}
    var fd=new FormData();fd.append('file',file,file.name);
    send('/api/load',{method:'POST',body:fd});
  }
  zone.addEventListener('dragover',function(e){e.preventDefault();zone.classList.add('over');});
  zone.addEventListener('dragleave',function(){zone.classList.remove('over');});
  zone.addEventListener('drop',function(e){e.preventDefault();zone.classList.remove('over');load(e.dataTransfer.files[0]);});
  input.addEventListener('change',function(){load(input.files[0]);input.value='';});
  viewer.addEventListener('click',function(e){
    var t=e.target.closest('[data-sort],[data-reset],[data-dismiss]');
    if(!t){return;}
    if(t.hasAttribute('data-dismiss')){t.closest('.alert').remove();return;}
    e.preventDefault();
    if(t.hasAttribute('data-reset')){send('/api/view',{method:'DELETE'});return;}
    send('/api/view?'+t.getAttribute('data-sort'));
  });
})();
`
